package consumidor

import (
	"testing"
	"time"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

// Eventos com corpo malformado nunca vão melhorar numa reentrega; os
// adaptadores devem descartá-los (retorno nil vira ack) em vez de devolver
// erro, que reenfileiraria a mensagem e travaria a fila de prefetch 1.
func TestEventosMalformadosSaoDescartados(t *testing.T) {
	c := &Consumidor{}

	t.Run("pedido alterado com JSON inválido", func(t *testing.T) {
		if err := c.processarPedidoAlterado(nil, []byte("{nao-e-json")); err != nil {
			t.Errorf("esperava descarte sem erro, obteve %v", err)
		}
	})

	t.Run("pedido alterado com pedidoId inválido", func(t *testing.T) {
		if err := c.processarPedidoAlterado(nil, []byte(`{"pedidoId": "nao-uuid"}`)); err != nil {
			t.Errorf("esperava descarte sem erro, obteve %v", err)
		}
	})

	t.Run("lançamento com JSON inválido", func(t *testing.T) {
		if err := c.processarLancamentoCriado(nil, []byte("{nao-e-json")); err != nil {
			t.Errorf("esperava descarte sem erro, obteve %v", err)
		}
	})

	t.Run("lançamento com lancamentoId inválido", func(t *testing.T) {
		if err := c.processarLancamentoCriado(nil, []byte(`{"lancamentoId": "nao-uuid"}`)); err != nil {
			t.Errorf("esperava descarte sem erro, obteve %v", err)
		}
	})
}

func TestOrdenarPorChegada(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	t.Run("data de criação manda", func(t *testing.T) {
		grupos := []dominio.GrupoProducao{
			{ID: idA, DataCriacao: base.Add(time.Hour)},
			{ID: idB, DataCriacao: base},
		}
		ordenarPorChegada(grupos)
		if grupos[0].ID != idB || grupos[1].ID != idA {
			t.Errorf("ordem errada: %s, %s", grupos[0].ID, grupos[1].ID)
		}
	})

	t.Run("irmãos da mesma transação desempatam pelo id", func(t *testing.T) {
		// lotes gravados juntos compartilham a data de criação
		permutacoes := [][]dominio.GrupoProducao{
			{{ID: idC, DataCriacao: base}, {ID: idA, DataCriacao: base}, {ID: idB, DataCriacao: base}},
			{{ID: idB, DataCriacao: base}, {ID: idC, DataCriacao: base}, {ID: idA, DataCriacao: base}},
		}
		for _, grupos := range permutacoes {
			ordenarPorChegada(grupos)
			if grupos[0].ID != idA || grupos[1].ID != idB || grupos[2].ID != idC {
				t.Errorf("ordem errada: %s, %s, %s", grupos[0].ID, grupos[1].ID, grupos[2].ID)
			}
		}
	})
}
