package consumidor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"servico-producao/internal/dominio"
	"servico-producao/internal/producao"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// processarPedidoAlterado é o adaptador do gatilho de alteração de pedido:
// re-extrai os grupos de impressão do estado atual do pedido, consolida com
// os grupos de produção persistidos que remetem a ele e aplica upserts e
// remoções na mesma transação.
func (c *Consumidor) processarPedidoAlterado(tx *gorm.DB, body []byte) error {
	var evento struct {
		PedidoID string `json:"pedidoId"`
	}
	// payload malformado nunca vai melhorar numa reentrega: descarta com ack
	// para não travar a fila
	if err := json.Unmarshal(body, &evento); err != nil {
		log.Printf("Payload de pedido alterado malformado, descartando: %v", err)
		return nil
	}
	pedidoID, err := uuid.Parse(evento.PedidoID)
	if err != nil {
		log.Printf("pedidoId %q inválido, descartando evento: %v", evento.PedidoID, err)
		return nil
	}

	existentes, err := buscarGruposDoPedido(tx, pedidoID)
	if err != nil {
		return err
	}

	var pedido dominio.Pedido
	if err := tx.Preload("Itens").First(&pedido, "id = ?", pedidoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// pedido removido: todos os grupos que remetiam a ele caem
			return removerGrupos(tx, pedidoID, existentes)
		}
		return fmt.Errorf("falha ao buscar pedido: %w", err)
	}

	var ocorrencias []producao.OcorrenciaGrupoImpressao
	if pedido.Status == dominio.StatusPedidoAberto {
		catalogos, err := carregarCatalogos(tx)
		if err != nil {
			return err
		}
		ocorrencias, err = producao.ExtrairGruposImpressao(pedido, catalogos)
		if err != nil {
			return fmt.Errorf("falha ao extrair grupos do pedido %s: %w", pedido.Numero, err)
		}
	}
	// pedido cancelado ou concluído: extração vazia derruba a contribuição
	// dele e libera os lotes obsoletos

	resultado, err := producao.OtimizarESepararGrupos(ocorrencias, pedido.ID, pedido.Numero, existentes)
	if err != nil {
		return fmt.Errorf("falha ao consolidar grupos do pedido %s: %w", pedido.Numero, err)
	}

	for i := range resultado.Upserts {
		g := &resultado.Upserts[i]
		if g.ID == uuid.Nil {
			if err := tx.Create(g).Error; err != nil {
				return fmt.Errorf("falha ao criar grupo de produção: %w", err)
			}
		} else {
			if err := tx.Save(g).Error; err != nil {
				return fmt.Errorf("falha ao atualizar grupo de produção %s: %w", g.ID, err)
			}
		}
	}

	if len(resultado.Remover) > 0 {
		if err := tx.Delete(&dominio.GrupoProducao{}, "id IN ?", resultado.Remover).Error; err != nil {
			return fmt.Errorf("falha ao remover grupos obsoletos: %w", err)
		}
	}

	log.Printf("Pedido %s reconsolidado: %d lote(s), %d remoção(ões)",
		pedido.Numero, len(resultado.Upserts), len(resultado.Remover))
	return nil
}

// buscarGruposDoPedido devolve, em ordem de chegada, os grupos de produção
// cuja lista de origens contém o pedido.
func buscarGruposDoPedido(tx *gorm.DB, pedidoID uuid.UUID) ([]dominio.GrupoProducao, error) {
	filtro := fmt.Sprintf(`[{"pedidoId": %q}]`, pedidoID)

	var grupos []dominio.GrupoProducao
	if err := tx.
		Where("origens @> ?", filtro).
		Find(&grupos).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar grupos do pedido: %w", err)
	}
	ordenarPorChegada(grupos)
	return grupos, nil
}

// ordenarPorChegada ordena por data de criação, desempatando pelo id. Lotes
// irmãos gravados na mesma transação compartilham a data de criação; sem o
// desempate a ordem em que chegam ao consolidador (e portanto o reuso de ids)
// variaria entre recomputações.
func ordenarPorChegada(grupos []dominio.GrupoProducao) {
	sort.SliceStable(grupos, func(i, j int) bool {
		if !grupos[i].DataCriacao.Equal(grupos[j].DataCriacao) {
			return grupos[i].DataCriacao.Before(grupos[j].DataCriacao)
		}
		return grupos[i].ID.String() < grupos[j].ID.String()
	})
}

func removerGrupos(tx *gorm.DB, pedidoID uuid.UUID, grupos []dominio.GrupoProducao) error {
	if len(grupos) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(grupos))
	for i, g := range grupos {
		ids[i] = g.ID
	}
	if err := tx.Delete(&dominio.GrupoProducao{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("falha ao remover grupos do pedido excluído: %w", err)
	}
	log.Printf("Pedido %s excluído: %d grupo(s) de produção removido(s)", pedidoID, len(ids))
	return nil
}

func carregarCatalogos(tx *gorm.DB) (producao.Catalogos, error) {
	cat := producao.Catalogos{
		Pecas:   make(map[uuid.UUID]dominio.Peca),
		Modelos: make(map[uuid.UUID]dominio.Modelo),
		Kits:    make(map[uuid.UUID]dominio.Kit),
	}

	var pecas []dominio.Peca
	if err := tx.Find(&pecas).Error; err != nil {
		return cat, fmt.Errorf("falha ao carregar peças: %w", err)
	}
	for _, p := range pecas {
		cat.Pecas[p.ID] = p
	}

	var modelos []dominio.Modelo
	if err := tx.Find(&modelos).Error; err != nil {
		return cat, fmt.Errorf("falha ao carregar modelos: %w", err)
	}
	for _, m := range modelos {
		cat.Modelos[m.ID] = m
	}

	var kits []dominio.Kit
	if err := tx.Find(&kits).Error; err != nil {
		return cat, fmt.Errorf("falha ao carregar kits: %w", err)
	}
	for _, k := range kits {
		cat.Kits[k.ID] = k
	}

	return cat, nil
}
