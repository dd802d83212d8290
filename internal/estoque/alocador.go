package estoque

import (
	"errors"
	"time"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

var (
	// ErrEstoqueInsuficiente sinaliza ruptura de estoque: nenhuma mutação
	// parcial pode ser aplicada; a transação envolvente deve ser abortada.
	ErrEstoqueInsuficiente = errors.New("estoque de filamento insuficiente para o consumo solicitado")

	// ErrEntradaViaLancamento guarda a política de que spools só ganham massa
	// pelo fluxo de cadastro, nunca pelo razão genérico de movimentos.
	ErrEntradaViaLancamento = errors.New("entrada de filamento não é permitida via lançamento; use o cadastro de spool")

	ErrQuantidadeInvalida = errors.New("quantidade de consumo deve ser positiva")
)

// ValidarMovimentoSpool aplica a política de movimentos sobre filamento:
// saída e ajuste negativo consomem spools; entrada e ajuste positivo são
// rejeitados, porque spools só ganham massa pelo fluxo de cadastro.
func ValidarMovimentoSpool(tipoMovimento string, quantidade float64) error {
	if tipoMovimento == dominio.TipoMovimentoEntrada {
		return ErrEntradaViaLancamento
	}
	if tipoMovimento == dominio.TipoMovimentoAjuste && quantidade > 0 {
		return ErrEntradaViaLancamento
	}
	return nil
}

// MutacaoSpool descreve a mudança de estado de um spool decidida numa
// rodada de alocação.
type MutacaoSpool struct {
	SpoolID            uuid.UUID
	NumeroSpool        int
	EstoqueAnterior    float64
	EstoqueNovo        float64
	QuantidadeDebitada float64
	AbertoAgora        bool
	FinalizadoAgora    bool
}

// AlocarConsumo decide de quais spools debitar a quantidade solicitada.
//
// Política: primeiro esgota qualquer spool já aberto com estoque; depois abre
// o spool fechado de menor número com estoque (o chamador deve fornecer os
// spools ordenados por número crescente). Um spool que chega a zero é
// finalizado e nunca mais selecionado. Se o conjunto não cobre a quantidade,
// a operação inteira falha sem nenhuma mutação.
//
// A função é pura: trabalha sobre uma cópia do estado e devolve apenas as
// mutações; a soma dos débitos é exatamente a quantidade solicitada.
func AlocarConsumo(spools []dominio.Spool, quantidade float64) ([]MutacaoSpool, error) {
	if quantidade <= 0 {
		return nil, ErrQuantidadeInvalida
	}

	type estadoSpool struct {
		estoque    float64
		aberto     bool
		finalizado bool
	}
	estados := make([]estadoSpool, len(spools))
	for i, s := range spools {
		estados[i] = estadoSpool{estoque: s.EstoqueAtual, aberto: s.Aberto, finalizado: s.Finalizado()}
	}

	var mutacoes []MutacaoSpool
	restante := quantidade

	for restante > 0 {
		sel := -1
		abriu := false

		for i := range estados {
			if estados[i].aberto && !estados[i].finalizado && estados[i].estoque > 0 {
				sel = i
				break
			}
		}
		if sel < 0 {
			for i := range estados {
				if !estados[i].aberto && !estados[i].finalizado && estados[i].estoque > 0 {
					sel = i
					abriu = true
					break
				}
			}
		}
		if sel < 0 {
			return nil, ErrEstoqueInsuficiente
		}

		est := &estados[sel]
		if abriu {
			est.aberto = true
		}

		debito := restante
		if est.estoque < debito {
			debito = est.estoque
		}
		est.estoque -= debito
		restante -= debito

		m := MutacaoSpool{
			SpoolID:            spools[sel].ID,
			NumeroSpool:        spools[sel].Numero,
			EstoqueAnterior:    spools[sel].EstoqueAtual,
			EstoqueNovo:        est.estoque,
			QuantidadeDebitada: debito,
			AbertoAgora:        abriu,
		}
		if est.estoque <= 0 {
			est.aberto = false
			est.finalizado = true
			m.FinalizadoAgora = true
		}
		mutacoes = append(mutacoes, m)
	}

	return mutacoes, nil
}

// AplicarMutacao grava uma mutação no spool. O débito é atribuído ao
// contador de consumo de produção ou de consumo real conforme a origem do
// lançamento, para que o agregado reporte uso teórico e uso pesado.
func AplicarMutacao(spool *dominio.Spool, m MutacaoSpool, origem string, lancamentoID uuid.UUID, agora time.Time) error {
	if m.AbertoAgora {
		if err := spool.Abrir(agora); err != nil {
			return err
		}
	}
	spool.EstoqueAtual = m.EstoqueNovo
	if m.FinalizadoAgora {
		spool.Aberto = false
		fim := agora
		spool.DataFim = &fim
	}
	if origem == dominio.OrigemLancamentoPesagem {
		spool.ConsumoReal += m.QuantidadeDebitada
	} else {
		spool.ConsumoProducao += m.QuantidadeDebitada
	}
	spool.LancamentosConsumo = append(spool.LancamentosConsumo, lancamentoID)
	return nil
}
