package producao

import (
	"fmt"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

// Catalogos são os cadastros completos necessários para explodir um pedido.
type Catalogos struct {
	Pecas   map[uuid.UUID]dominio.Peca
	Modelos map[uuid.UUID]dominio.Modelo
	Kits    map[uuid.UUID]dominio.Kit
}

// OcorrenciaGrupoImpressao é uma aplicação de um template de impressão já
// escalada pelas multiplicidades de toda a hierarquia do produto
// (kit → modelo → peça → linha do pedido).
type OcorrenciaGrupoImpressao struct {
	GrupoID          string
	Nome             string
	ParteID          uuid.UUID
	NomeParte        string
	ModeloID         string
	KitID            string
	Partes           []dominio.ParteTemplate
	Filamentos       []dominio.FilamentoTemplate
	OutrosInsumos    []dominio.InsumoTemplate
	TempoImpressao   float64
	PesoFilamento    float64
	QuantidadeMaxima int
}

// ExtrairGruposImpressao percorre os itens de um pedido e os achata numa
// lista de ocorrências de grupos de impressão. Nenhuma deduplicação é feita
// aqui; ocorrências repetidas se acumulam no consolidador.
func ExtrairGruposImpressao(pedido dominio.Pedido, cat Catalogos) ([]OcorrenciaGrupoImpressao, error) {
	var ocorrencias []OcorrenciaGrupoImpressao

	for _, item := range pedido.Itens {
		switch item.Tipo {
		case dominio.TipoItemPeca:
			peca, ok := cat.Pecas[item.ProdutoID]
			if !ok {
				return nil, fmt.Errorf("peça %s não encontrada no catálogo", item.ProdutoID)
			}
			// linha direta de peça: uma ocorrência por unidade pedida, com as
			// quantidades internas do template inalteradas — a contagem de
			// ocorrências é que representa a quantidade
			for u := 0; u < item.Quantidade; u++ {
				for _, tpl := range peca.GruposImpressao {
					ocorrencias = append(ocorrencias, escalarOcorrencia(peca, tpl, 1, "", ""))
				}
			}

		case dominio.TipoItemModelo:
			modelo, ok := cat.Modelos[item.ProdutoID]
			if !ok {
				return nil, fmt.Errorf("modelo %s não encontrado no catálogo", item.ProdutoID)
			}
			ocs, err := extrairDeModelo(cat, modelo, item.Quantidade, "")
			if err != nil {
				return nil, err
			}
			ocorrencias = append(ocorrencias, ocs...)

		case dominio.TipoItemKit:
			kit, ok := cat.Kits[item.ProdutoID]
			if !ok {
				return nil, fmt.Errorf("kit %s não encontrado no catálogo", item.ProdutoID)
			}
			for _, itemKit := range kit.Modelos {
				modelo, ok := cat.Modelos[itemKit.ModeloID]
				if !ok {
					return nil, fmt.Errorf("modelo %s do kit %s não encontrado no catálogo", itemKit.ModeloID, kit.ID)
				}
				ocs, err := extrairDeModelo(cat, modelo, itemKit.Quantidade*item.Quantidade, kit.ID.String())
				if err != nil {
					return nil, err
				}
				ocorrencias = append(ocorrencias, ocs...)
			}

		default:
			return nil, fmt.Errorf("tipo de item de pedido desconhecido: %q", item.Tipo)
		}
	}

	return ocorrencias, nil
}

func extrairDeModelo(cat Catalogos, modelo dominio.Modelo, multiplicador int, kitID string) ([]OcorrenciaGrupoImpressao, error) {
	var ocorrencias []OcorrenciaGrupoImpressao
	for _, itemModelo := range modelo.Partes {
		peca, ok := cat.Pecas[itemModelo.ParteID]
		if !ok {
			return nil, fmt.Errorf("peça %s do modelo %s não encontrada no catálogo", itemModelo.ParteID, modelo.ID)
		}
		mult := itemModelo.Quantidade * multiplicador
		for _, tpl := range peca.GruposImpressao {
			oc := escalarOcorrencia(peca, tpl, mult, modelo.ID.String(), kitID)
			ocorrencias = append(ocorrencias, oc)
		}
	}
	return ocorrencias, nil
}

// escalarOcorrencia copia o template multiplicando todas as quantidades,
// o tempo de impressão e o peso de filamento pelo multiplicador.
func escalarOcorrencia(peca dominio.Peca, tpl dominio.GrupoImpressaoTemplate, mult int, modeloID, kitID string) OcorrenciaGrupoImpressao {
	oc := OcorrenciaGrupoImpressao{
		GrupoID:          tpl.Identificador,
		Nome:             tpl.Nome,
		ParteID:          peca.ID,
		NomeParte:        peca.Nome,
		ModeloID:         modeloID,
		KitID:            kitID,
		TempoImpressao:   tpl.TempoImpressao * float64(mult),
		PesoFilamento:    tpl.PesoFilamento * float64(mult),
		QuantidadeMaxima: tpl.QuantidadeMaxima,
	}

	oc.Partes = make([]dominio.ParteTemplate, len(tpl.Partes))
	for i, p := range tpl.Partes {
		p.Quantidade *= mult
		oc.Partes[i] = p
	}

	oc.Filamentos = make([]dominio.FilamentoTemplate, len(tpl.Filamentos))
	for i, f := range tpl.Filamentos {
		f.QuantidadeGramas *= float64(mult)
		oc.Filamentos[i] = f
	}

	if len(tpl.OutrosInsumos) > 0 {
		oc.OutrosInsumos = make([]dominio.InsumoTemplate, len(tpl.OutrosInsumos))
		for i, ins := range tpl.OutrosInsumos {
			ins.Quantidade *= float64(mult)
			oc.OutrosInsumos[i] = ins
		}
	}

	return oc
}
