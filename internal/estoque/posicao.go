package estoque

import (
	"github.com/google/uuid"

	"servico-producao/internal/dominio"
)

// AplicarMovimentoPosicional mantém o razão posicional de insumos
// não-filamento: soma o delta na posição (local, recipiente, divisão) do
// insumo, cria a posição quando o crédito chega a um lugar novo e filtra
// posições zeradas. Devolve a lista resultante e as posições que devem ser
// removidas da base.
func AplicarMovimentoPosicional(
	posicoes []dominio.PosicaoEstoque,
	insumoID uuid.UUID,
	local, recipiente, divisao string,
	delta float64,
) (restantes []dominio.PosicaoEstoque, removidas []dominio.PosicaoEstoque, err error) {

	if delta == 0 {
		return posicoes, nil, nil
	}

	encontrou := false
	for i := range posicoes {
		p := posicoes[i]
		if p.Local == local && p.Recipiente == recipiente && p.Divisao == divisao {
			encontrou = true
			p.Quantidade += delta
			if p.Quantidade < 0 {
				return nil, nil, ErrEstoqueInsuficiente
			}
			if p.Quantidade == 0 {
				removidas = append(removidas, p)
				continue
			}
			restantes = append(restantes, p)
			continue
		}
		restantes = append(restantes, p)
	}

	if !encontrou {
		if delta < 0 {
			return nil, nil, ErrEstoqueInsuficiente
		}
		restantes = append(restantes, dominio.PosicaoEstoque{
			InsumoID:   insumoID,
			Local:      local,
			Recipiente: recipiente,
			Divisao:    divisao,
			Quantidade: delta,
		})
	}

	return restantes, removidas, nil
}
