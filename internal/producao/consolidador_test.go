package producao

import (
	"errors"
	"reflect"
	"testing"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

var (
	pedidoO1 = uuid.New()
	pedidoO2 = uuid.New()
	parteP   = uuid.New()
)

// ocorrenciaTemplate monta uma ocorrência do template T da peça P já
// escalada pelo multiplicador, no mesmo formato que o extrator produz.
func ocorrenciaTemplate(mult int, quantidadeMaxima int) OcorrenciaGrupoImpressao {
	return OcorrenciaGrupoImpressao{
		GrupoID:   "T",
		Nome:      "Corpo completo",
		ParteID:   parteP,
		NomeParte: "Peça P",
		Partes: []dominio.ParteTemplate{
			{ParteID: "sub1", Nome: "Corpo", Quantidade: 1 * mult, NecessitaMontagem: true},
		},
		Filamentos: []dominio.FilamentoTemplate{
			{GrupoFilamentoID: "F1", Nome: "PLA Preto", QuantidadeGramas: 12.5 * float64(mult)},
		},
		OutrosInsumos: []dominio.InsumoTemplate{
			{InsumoID: "I1", Nome: "Parafuso M3", Quantidade: 2 * float64(mult)},
		},
		TempoImpressao:   30 * float64(mult),
		PesoFilamento:    13 * float64(mult),
		QuantidadeMaxima: quantidadeMaxima,
	}
}

// nUnidades simula uma linha direta de peça: uma ocorrência por unidade.
func nUnidades(n, quantidadeMaxima int) []OcorrenciaGrupoImpressao {
	ocs := make([]OcorrenciaGrupoImpressao, n)
	for i := range ocs {
		ocs[i] = ocorrenciaTemplate(1, quantidadeMaxima)
	}
	return ocs
}

// persistir simula a aplicação dos upserts: atribui ids aos lotes novos,
// como o adaptador faria ao gravar.
func persistir(r ResultadoConsolidacao) []dominio.GrupoProducao {
	grupos := make([]dominio.GrupoProducao, len(r.Upserts))
	copy(grupos, r.Upserts)
	for i := range grupos {
		if grupos[i].ID == uuid.Nil {
			grupos[i].ID = uuid.New()
		}
	}
	return grupos
}

func TestOtimizarESepararGrupos_CenarioA(t *testing.T) {
	// pedido de 5 unidades da peça P, template com teto 2, sem grupos prévios
	resultado, err := OtimizarESepararGrupos(nUnidades(5, 2), pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}

	if len(resultado.Upserts) != 3 {
		t.Fatalf("esperava 3 lotes, obteve %d", len(resultado.Upserts))
	}
	if len(resultado.Remover) != 0 {
		t.Errorf("esperava lista de remoção vazia, obteve %d", len(resultado.Remover))
	}

	esperados := []int{2, 2, 1}
	for i, g := range resultado.Upserts {
		if g.QuantidadeProduzir != esperados[i] {
			t.Errorf("lote %d: esperava quantidade %d, obteve %d", i, esperados[i], g.QuantidadeProduzir)
		}
		if g.QuantidadeOriginal != 5 {
			t.Errorf("lote %d: esperava quantidade original 5, obteve %d", i, g.QuantidadeOriginal)
		}
		if len(g.Origens) != 1 || g.Origens[0].PedidoID != pedidoO1 {
			t.Errorf("lote %d: esperava uma origem do pedido O1, obteve %+v", i, g.Origens)
		}
		if g.Status != dominio.StatusGrupoAguardando {
			t.Errorf("lote %d: esperava status aguardando, obteve %s", i, g.Status)
		}
	}

	// frações proporcionais: filamento ceil(62.5 × 2/5) = 25g, último ceil(12.5) = 13g
	if g := resultado.Upserts[0]; g.Filamentos[0].QuantidadeGramas != 25 {
		t.Errorf("esperava 25g de filamento no primeiro lote, obteve %.1f", g.Filamentos[0].QuantidadeGramas)
	}
	if g := resultado.Upserts[2]; g.Filamentos[0].QuantidadeGramas != 13 {
		t.Errorf("esperava 13g de filamento no último lote, obteve %.1f", g.Filamentos[0].QuantidadeGramas)
	}
	// tempo é linear, não arredondado: 150 × 2/5 = 60
	if g := resultado.Upserts[0]; g.TempoImpressao != 60 {
		t.Errorf("esperava tempo 60 no primeiro lote, obteve %.1f", g.TempoImpressao)
	}
}

func TestOtimizarESepararGrupos_CenarioB(t *testing.T) {
	// cenário A persistido, depois o pedido é editado de 5 para 3 unidades
	primeira, err := OtimizarESepararGrupos(nUnidades(5, 2), pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	existentes := persistir(primeira)
	g1, g2, g3 := existentes[0].ID, existentes[1].ID, existentes[2].ID

	resultado, err := OtimizarESepararGrupos(nUnidades(3, 2), pedidoO1, "P-001", existentes)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}

	if len(resultado.Upserts) != 2 {
		t.Fatalf("esperava 2 lotes, obteve %d", len(resultado.Upserts))
	}
	if resultado.Upserts[0].ID != g1 || resultado.Upserts[0].QuantidadeProduzir != 2 {
		t.Errorf("esperava g1 com quantidade 2, obteve %s com %d",
			resultado.Upserts[0].ID, resultado.Upserts[0].QuantidadeProduzir)
	}
	if resultado.Upserts[1].ID != g2 || resultado.Upserts[1].QuantidadeProduzir != 1 {
		t.Errorf("esperava g2 com quantidade 1, obteve %s com %d",
			resultado.Upserts[1].ID, resultado.Upserts[1].QuantidadeProduzir)
	}
	if len(resultado.Remover) != 1 || resultado.Remover[0] != g3 {
		t.Errorf("esperava remoção exata de g3, obteve %v", resultado.Remover)
	}
}

func TestOtimizarESepararGrupos_Idempotencia(t *testing.T) {
	ocorrencias := nUnidades(5, 2)

	primeira, err := OtimizarESepararGrupos(ocorrencias, pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	existentes := persistir(primeira)

	segunda, err := OtimizarESepararGrupos(ocorrencias, pedidoO1, "P-001", existentes)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	if len(segunda.Remover) != 0 {
		t.Errorf("esperava lista de remoção vazia na segunda rodada, obteve %v", segunda.Remover)
	}

	terceira, err := OtimizarESepararGrupos(ocorrencias, pedidoO1, "P-001", persistir(segunda))
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}

	if !reflect.DeepEqual(segunda.Upserts, terceira.Upserts) {
		t.Errorf("esperava upserts idênticos entre rodadas:\n%+v\n%+v", segunda.Upserts, terceira.Upserts)
	}
	if len(terceira.Remover) != 0 {
		t.Errorf("esperava lista de remoção vazia na terceira rodada, obteve %v", terceira.Remover)
	}
}

func TestOtimizarESepararGrupos_Conservacao(t *testing.T) {
	// ocorrências de multiplicadores variados: total 1+3+2+1 = 7, teto 3
	ocorrencias := []OcorrenciaGrupoImpressao{
		ocorrenciaTemplate(1, 3),
		ocorrenciaTemplate(3, 3),
		ocorrenciaTemplate(2, 3),
		ocorrenciaTemplate(1, 3),
	}

	resultado, err := OtimizarESepararGrupos(ocorrencias, pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}

	soma := 0
	for _, g := range resultado.Upserts {
		soma += g.QuantidadeProduzir
		if g.QuantidadeMaxima > 0 && g.QuantidadeProduzir > g.QuantidadeMaxima {
			t.Errorf("lote excede o teto: %d > %d", g.QuantidadeProduzir, g.QuantidadeMaxima)
		}
	}
	if soma != 7 {
		t.Errorf("esperava soma exata 7 entre os lotes, obteve %d", soma)
	}
}

func TestOtimizarESepararGrupos_IsolamentoUnitario(t *testing.T) {
	t.Run("N unidades viram N lotes distintos de quantidade 1", func(t *testing.T) {
		resultado, err := OtimizarESepararGrupos(nUnidades(4, 1), pedidoO1, "P-001", nil)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		if len(resultado.Upserts) != 4 {
			t.Fatalf("esperava 4 lotes, obteve %d", len(resultado.Upserts))
		}
		for i, g := range resultado.Upserts {
			if g.QuantidadeProduzir != 1 {
				t.Errorf("lote %d: esperava quantidade 1, obteve %d", i, g.QuantidadeProduzir)
			}
		}
	})

	t.Run("recomputação preserva as identidades unitárias", func(t *testing.T) {
		primeira, err := OtimizarESepararGrupos(nUnidades(4, 1), pedidoO1, "P-001", nil)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		existentes := persistir(primeira)

		segunda, err := OtimizarESepararGrupos(nUnidades(4, 1), pedidoO1, "P-001", existentes)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		for i, g := range segunda.Upserts {
			if g.ID != existentes[i].ID {
				t.Errorf("lote %d: esperava reutilizar id %s, obteve %s", i, existentes[i].ID, g.ID)
			}
		}
		if len(segunda.Remover) != 0 {
			t.Errorf("esperava lista de remoção vazia, obteve %v", segunda.Remover)
		}
	})
}

func TestOtimizarESepararGrupos_EstabilidadeDeIdentidade(t *testing.T) {
	t.Run("ids removidos são exatamente os não reutilizados", func(t *testing.T) {
		primeira, err := OtimizarESepararGrupos(nUnidades(6, 2), pedidoO1, "P-001", nil)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		existentes := persistir(primeira) // 3 lotes

		segunda, err := OtimizarESepararGrupos(nUnidades(2, 2), pedidoO1, "P-001", existentes)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}

		reutilizados := make(map[uuid.UUID]bool)
		for _, g := range segunda.Upserts {
			reutilizados[g.ID] = true
		}
		for _, g := range existentes {
			if reutilizados[g.ID] {
				continue
			}
			achou := false
			for _, id := range segunda.Remover {
				if id == g.ID {
					achou = true
				}
			}
			if !achou {
				t.Errorf("id %s não reutilizado deveria estar na remoção", g.ID)
			}
		}
		if len(segunda.Upserts)+len(segunda.Remover) != len(existentes) {
			t.Errorf("esperava %d ids entre upserts e remoção, obteve %d+%d",
				len(existentes), len(segunda.Upserts), len(segunda.Remover))
		}
	})

	t.Run("status e data de criação sobrevivem à recomputação", func(t *testing.T) {
		primeira, err := OtimizarESepararGrupos(nUnidades(4, 2), pedidoO1, "P-001", nil)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		existentes := persistir(primeira)
		existentes[0].Status = dominio.StatusGrupoEmProducao

		segunda, err := OtimizarESepararGrupos(nUnidades(4, 2), pedidoO1, "P-001", existentes)
		if err != nil {
			t.Fatalf("esperava nil, obteve erro: %v", err)
		}
		if segunda.Upserts[0].Status != dominio.StatusGrupoEmProducao {
			t.Errorf("esperava status em_producao preservado, obteve %s", segunda.Upserts[0].Status)
		}
		if !segunda.Upserts[0].DataCriacao.Equal(existentes[0].DataCriacao) {
			t.Errorf("esperava data de criação preservada")
		}
	})
}

func TestOtimizarESepararGrupos_OrigensDeOutrosPedidos(t *testing.T) {
	// um lote consolidado lembra de O2 mesmo quando O1 é recomputado
	primeira, err := OtimizarESepararGrupos(nUnidades(2, 4), pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	existentes := persistir(primeira)
	existentes[0].Origens = append(existentes[0].Origens, dominio.OrigemPedido{
		PedidoID:      pedidoO2,
		NumeroPedido:  "P-002",
		GrupoOrigemID: "T",
	})

	segunda, err := OtimizarESepararGrupos(nUnidades(2, 4), pedidoO1, "P-001", existentes)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}

	achouO2 := false
	for _, o := range segunda.Upserts[0].Origens {
		if o.PedidoID == pedidoO2 {
			achouO2 = true
		}
	}
	if !achouO2 {
		t.Errorf("esperava origem de O2 preservada, obteve %+v", segunda.Upserts[0].Origens)
	}
}

func TestOtimizarESepararGrupos_PedidoEsvaziado(t *testing.T) {
	// extração vazia (pedido cancelado ou linha removida) derruba todos os lotes
	primeira, err := OtimizarESepararGrupos(nUnidades(3, 2), pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	existentes := persistir(primeira)

	segunda, err := OtimizarESepararGrupos(nil, pedidoO1, "P-001", existentes)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	if len(segunda.Upserts) != 0 {
		t.Errorf("esperava nenhum upsert, obteve %d", len(segunda.Upserts))
	}
	if len(segunda.Remover) != len(existentes) {
		t.Errorf("esperava remoção de todos os %d lotes, obteve %d", len(existentes), len(segunda.Remover))
	}
}

func TestOtimizarESepararGrupos_TotaisDivergentes(t *testing.T) {
	oc := ocorrenciaTemplate(1, 2)
	oc.Partes = append(oc.Partes, dominio.ParteTemplate{ParteID: "sub2", Nome: "Tampa", Quantidade: 3})

	_, err := OtimizarESepararGrupos([]OcorrenciaGrupoImpressao{oc}, pedidoO1, "P-001", nil)
	if !errors.Is(err, ErrTotaisDivergentes) {
		t.Errorf("esperava ErrTotaisDivergentes, obteve %v", err)
	}
}

func TestOtimizarESepararGrupos_TetoIlimitado(t *testing.T) {
	// sem teto, tudo vira um lote só
	resultado, err := OtimizarESepararGrupos(nUnidades(9, 0), pedidoO1, "P-001", nil)
	if err != nil {
		t.Fatalf("esperava nil, obteve erro: %v", err)
	}
	if len(resultado.Upserts) != 1 {
		t.Fatalf("esperava 1 lote, obteve %d", len(resultado.Upserts))
	}
	if resultado.Upserts[0].QuantidadeProduzir != 9 {
		t.Errorf("esperava quantidade 9, obteve %d", resultado.Upserts[0].QuantidadeProduzir)
	}
}
