package consumidor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"servico-producao/internal/dominio"
	"servico-producao/internal/estoque"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errInsumoNaoEncontrado = errors.New("insumo do lançamento não encontrado")

// processarLancamentoCriado é o adaptador do gatilho de lançamento de
// estoque. O ramo de filamento roda o alocador de spools numa sub-transação
// (savepoint): falhas de negócio desfazem qualquer mutação parcial e ficam
// registradas no próprio lançamento, sem reentrega; falhas de infraestrutura
// propagam e reenfileiram a mensagem.
func (c *Consumidor) processarLancamentoCriado(tx *gorm.DB, body []byte) error {
	var evento struct {
		LancamentoID string `json:"lancamentoId"`
	}
	// payload malformado nunca vai melhorar numa reentrega: descarta com ack
	// para não travar a fila
	if err := json.Unmarshal(body, &evento); err != nil {
		log.Printf("Payload de lançamento malformado, descartando: %v", err)
		return nil
	}
	lancamentoID, err := uuid.Parse(evento.LancamentoID)
	if err != nil {
		log.Printf("lancamentoId %q inválido, descartando evento: %v", evento.LancamentoID, err)
		return nil
	}

	var lancamento dominio.LancamentoInsumo
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lancamento, "id = ?", lancamentoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Lançamento %s não encontrado; evento ignorado", lancamentoID)
			return nil
		}
		return fmt.Errorf("falha ao buscar lançamento: %w", err)
	}

	if lancamento.Status != dominio.StatusLancamentoPendente {
		log.Printf("Lançamento %s já está %s, ignorando", lancamento.ID, lancamento.Status)
		return nil
	}

	processar := func(sub *gorm.DB) error {
		if lancamento.EhFilamento {
			return processarFilamento(sub, lancamento)
		}
		return processarPosicional(sub, lancamento)
	}

	if err := tx.Transaction(processar); err != nil {
		if ehErroDeNegocio(err) {
			log.Printf("Lançamento %s falhou: %v", lancamento.ID, err)
			return marcarLancamento(tx, &lancamento, dominio.StatusLancamentoFalhou, err.Error())
		}
		return err
	}

	return marcarLancamento(tx, &lancamento, dominio.StatusLancamentoProcessado, "")
}

func ehErroDeNegocio(err error) bool {
	return errors.Is(err, estoque.ErrEstoqueInsuficiente) ||
		errors.Is(err, estoque.ErrEntradaViaLancamento) ||
		errors.Is(err, estoque.ErrQuantidadeInvalida) ||
		errors.Is(err, errInsumoNaoEncontrado)
}

func marcarLancamento(tx *gorm.DB, l *dominio.LancamentoInsumo, status, mensagem string) error {
	agora := time.Now()
	l.Status = status
	l.DataProcessamento = &agora
	if mensagem != "" {
		l.MensagemErro = &mensagem
	}
	if err := tx.Save(l).Error; err != nil {
		return fmt.Errorf("falha ao atualizar lançamento: %w", err)
	}
	return nil
}

// processarFilamento aplica o lançamento a um grupo de filamento: seleciona
// spools pela política aberto-primeiro, debita, abre e finaliza spools,
// emite notificações de abertura e recalcula o agregado do grupo.
func processarFilamento(tx *gorm.DB, lancamento dominio.LancamentoInsumo) error {
	if err := estoque.ValidarMovimentoSpool(lancamento.TipoMovimento, lancamento.Quantidade); err != nil {
		return err
	}

	var grupo dominio.GrupoFilamento
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&grupo, "id = ?", lancamento.InsumoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: grupo de filamento %s", errInsumoNaoEncontrado, lancamento.InsumoID)
		}
		return fmt.Errorf("falha ao buscar grupo de filamento: %w", err)
	}

	var candidatos []dominio.Spool
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("grupo_filamento_id = ? AND data_fim IS NULL", grupo.ID).
		Order("numero ASC").
		Find(&candidatos).Error; err != nil {
		return fmt.Errorf("falha ao buscar spools: %w", err)
	}

	necessario := math.Abs(lancamento.Quantidade)
	mutacoes, err := estoque.AlocarConsumo(candidatos, necessario)
	if err != nil {
		return err
	}

	agora := time.Now()
	porID := make(map[uuid.UUID]*dominio.Spool, len(candidatos))
	for i := range candidatos {
		porID[candidatos[i].ID] = &candidatos[i]
	}

	for _, m := range mutacoes {
		spool := porID[m.SpoolID]
		if err := estoque.AplicarMutacao(spool, m, lancamento.OrigemLancamento, lancamento.ID, agora); err != nil {
			return fmt.Errorf("falha ao aplicar mutação no spool %d: %w", m.NumeroSpool, err)
		}
		if err := tx.Save(spool).Error; err != nil {
			return fmt.Errorf("falha ao salvar spool %d: %w", m.NumeroSpool, err)
		}
		if m.AbertoAgora {
			notificacao := dominio.NotificacaoSpool{
				SpoolID:          spool.ID,
				GrupoFilamentoID: grupo.ID,
				NumeroSpool:      spool.Numero,
				Mensagem:         fmt.Sprintf("Spool #%d de %s foi aberto", spool.Numero, grupo.Nome),
			}
			if err := tx.Create(&notificacao).Error; err != nil {
				return fmt.Errorf("falha ao criar notificação: %w", err)
			}
		}
	}

	return estoque.RecalcularAgregado(tx, &grupo)
}

// processarPosicional mantém o razão posicional dos insumos não-filamento.
func processarPosicional(tx *gorm.DB, lancamento dominio.LancamentoInsumo) error {
	delta := lancamento.Quantidade
	if lancamento.TipoMovimento == dominio.TipoMovimentoSaida {
		delta = -math.Abs(lancamento.Quantidade)
	}

	var posicoes []dominio.PosicaoEstoque
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("insumo_id = ?", lancamento.InsumoID).
		Find(&posicoes).Error; err != nil {
		return fmt.Errorf("falha ao buscar posições: %w", err)
	}

	restantes, removidas, err := estoque.AplicarMovimentoPosicional(
		posicoes, lancamento.InsumoID,
		lancamento.Local, lancamento.Recipiente, lancamento.Divisao,
		delta,
	)
	if err != nil {
		return err
	}

	for i := range restantes {
		if restantes[i].ID == uuid.Nil {
			if err := tx.Create(&restantes[i]).Error; err != nil {
				return fmt.Errorf("falha ao criar posição: %w", err)
			}
		} else {
			if err := tx.Save(&restantes[i]).Error; err != nil {
				return fmt.Errorf("falha ao salvar posição: %w", err)
			}
		}
	}
	for _, p := range removidas {
		if err := tx.Delete(&dominio.PosicaoEstoque{}, "id = ?", p.ID).Error; err != nil {
			return fmt.Errorf("falha ao remover posição zerada: %w", err)
		}
	}

	return nil
}
