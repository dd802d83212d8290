package estoque

import (
	"fmt"
	"time"

	"servico-producao/internal/dominio"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecalcularGrupoFilamento recalcula os campos derivados do agregado a
// partir do conjunto completo de spools do grupo. O custo médio é ponderado
// pelo estoque remanescente de cada spool.
func RecalcularGrupoFilamento(grupo *dominio.GrupoFilamento, spools []dominio.Spool) {
	grupo.EstoqueTotalGramas = 0
	grupo.ConsumoProducaoTotal = 0
	grupo.ConsumoRealTotal = 0
	grupo.SpoolsEmEstoque = nil

	custoAcumulado := decimal.Zero
	estoqueAcumulado := decimal.Zero

	for _, s := range spools {
		grupo.ConsumoProducaoTotal += s.ConsumoProducao
		grupo.ConsumoRealTotal += s.ConsumoReal
		if s.EstoqueAtual <= 0 {
			continue
		}
		grupo.EstoqueTotalGramas += s.EstoqueAtual
		grupo.SpoolsEmEstoque = append(grupo.SpoolsEmEstoque, s.ID)

		estoque := decimal.NewFromFloat(s.EstoqueAtual)
		custoAcumulado = custoAcumulado.Add(decimal.NewFromFloat(s.CustoPorGrama).Mul(estoque))
		estoqueAcumulado = estoqueAcumulado.Add(estoque)
	}

	if estoqueAcumulado.IsPositive() {
		grupo.CustoMedioPonderado, _ = custoAcumulado.Div(estoqueAcumulado).Round(4).Float64()
	} else {
		grupo.CustoMedioPonderado = 0
	}
}

// RecalcularAgregado rescaneia todos os spools irmãos e persiste o agregado
// recalculado; sem nenhum spool restante, o agregado é removido.
func RecalcularAgregado(tx *gorm.DB, grupo *dominio.GrupoFilamento) error {
	var todos []dominio.Spool
	if err := tx.Where("grupo_filamento_id = ?", grupo.ID).
		Order("numero ASC").
		Find(&todos).Error; err != nil {
		return fmt.Errorf("falha ao rescanear spools: %w", err)
	}

	if len(todos) == 0 {
		if err := tx.Delete(grupo).Error; err != nil {
			return fmt.Errorf("falha ao remover agregado vazio: %w", err)
		}
		return nil
	}

	RecalcularGrupoFilamento(grupo, todos)
	grupo.DataAtualizacao = time.Now()
	if err := tx.Save(grupo).Error; err != nil {
		return fmt.Errorf("falha ao salvar agregado: %w", err)
	}
	return nil
}
