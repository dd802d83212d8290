package estoque

import (
	"errors"
	"testing"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

func TestAplicarMovimentoPosicional(t *testing.T) {
	insumoID := uuid.New()

	t.Run("crédito em lugar novo cria a posição", func(t *testing.T) {
		restantes, removidas, err := AplicarMovimentoPosicional(nil, insumoID, "prateleira-a", "caixa-1", "", 10)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		if len(restantes) != 1 || restantes[0].Quantidade != 10 {
			t.Errorf("esperava posição nova com 10, obteve %+v", restantes)
		}
		if len(removidas) != 0 {
			t.Errorf("esperava nenhuma remoção, obteve %+v", removidas)
		}
	})

	t.Run("débito parcial mantém a posição", func(t *testing.T) {
		posicoes := []dominio.PosicaoEstoque{
			{ID: uuid.New(), InsumoID: insumoID, Local: "prateleira-a", Recipiente: "caixa-1", Quantidade: 10},
		}
		restantes, removidas, err := AplicarMovimentoPosicional(posicoes, insumoID, "prateleira-a", "caixa-1", "", -4)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		if len(restantes) != 1 || restantes[0].Quantidade != 6 {
			t.Errorf("esperava 6 restantes, obteve %+v", restantes)
		}
		if len(removidas) != 0 {
			t.Errorf("esperava nenhuma remoção, obteve %+v", removidas)
		}
	})

	t.Run("posição zerada é filtrada para remoção", func(t *testing.T) {
		posicoes := []dominio.PosicaoEstoque{
			{ID: uuid.New(), InsumoID: insumoID, Local: "prateleira-a", Recipiente: "caixa-1", Quantidade: 4},
			{ID: uuid.New(), InsumoID: insumoID, Local: "prateleira-b", Recipiente: "caixa-2", Quantidade: 7},
		}
		restantes, removidas, err := AplicarMovimentoPosicional(posicoes, insumoID, "prateleira-a", "caixa-1", "", -4)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		if len(restantes) != 1 || restantes[0].Local != "prateleira-b" {
			t.Errorf("esperava só a posição b, obteve %+v", restantes)
		}
		if len(removidas) != 1 || removidas[0].Local != "prateleira-a" {
			t.Errorf("esperava remoção da posição a, obteve %+v", removidas)
		}
	})

	t.Run("débito maior que o saldo é rejeitado", func(t *testing.T) {
		posicoes := []dominio.PosicaoEstoque{
			{ID: uuid.New(), InsumoID: insumoID, Local: "prateleira-a", Recipiente: "caixa-1", Quantidade: 3},
		}
		_, _, err := AplicarMovimentoPosicional(posicoes, insumoID, "prateleira-a", "caixa-1", "", -5)
		if !errors.Is(err, ErrEstoqueInsuficiente) {
			t.Errorf("esperava ErrEstoqueInsuficiente, obteve %v", err)
		}
	})

	t.Run("débito em lugar inexistente é rejeitado", func(t *testing.T) {
		_, _, err := AplicarMovimentoPosicional(nil, insumoID, "prateleira-x", "", "", -1)
		if !errors.Is(err, ErrEstoqueInsuficiente) {
			t.Errorf("esperava ErrEstoqueInsuficiente, obteve %v", err)
		}
	})
}
