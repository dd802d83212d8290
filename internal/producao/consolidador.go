package producao

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
)

// ErrTotaisDivergentes indica um template cujos subcomponentes não escalam
// juntos. Por construção todos os subcomponentes de um template acompanham a
// mesma contagem de rodadas; um total divergente significa cadastro corrompido.
var ErrTotaisDivergentes = errors.New("totais de subcomponentes divergem dentro de uma chave de consolidação")

// ResultadoConsolidacao é o conjunto de escritas que o adaptador deve aplicar
// atomicamente: lotes a criar/atualizar e ids de lotes obsoletos.
type ResultadoConsolidacao struct {
	Upserts []dominio.GrupoProducao
	Remover []uuid.UUID
}

type acumuladoParte struct {
	nome              string
	quantidade        int
	necessitaMontagem bool
}

type acumuladoFilamento struct {
	grupoFilamentoID string
	insumoID         string
	nome             string
	gramas           float64
}

type acumuladoInsumo struct {
	nome       string
	quantidade float64
}

// entradaConsolidacao acumula tudo que compartilha uma mesma chave de
// consolidação: totais correntes, origens e os ids de documentos já
// persistidos (consumidos em ordem de chegada na re-separação).
type entradaConsolidacao struct {
	parteID    uuid.UUID
	nomeParte  string
	templateID string
	nomeGrupo  string
	modeloID   string
	kitID      string

	partes          map[string]*acumuladoParte
	ordemPartes     []string
	filamentos      map[string]*acumuladoFilamento
	ordemFilamentos []string
	insumos         map[string]*acumuladoInsumo
	ordemInsumos    []string

	tempoTotal float64
	pesoTotal  float64

	quantidadeMaxima int // 0 = sem limite
	origens          []dominio.OrigemPedido
	idsExistentes    []uuid.UUID
}

// OtimizarESepararGrupos mescla as ocorrências recém-extraídas de um pedido
// com os grupos de produção já persistidos que remetem a esse pedido e
// re-separa os totais em lotes limitados por quantidade_maxima.
//
// A função é pura e idempotente: rodar duas vezes sobre a mesma entrada
// produz upserts idênticos e lista de remoção vazia na segunda rodada. Os
// grupos existentes contribuem com identidade (ids de documento, origens de
// outros pedidos, teto de lote e status/data de criação preservados); as
// quantidades vêm exclusivamente da extração corrente, que substitui a
// contribuição anterior deste pedido.
func OtimizarESepararGrupos(
	ocorrencias []OcorrenciaGrupoImpressao,
	pedidoID uuid.UUID,
	numeroPedido string,
	existentes []dominio.GrupoProducao,
) (ResultadoConsolidacao, error) {

	entradas := make(map[string]*entradaConsolidacao)
	var ordemChaves []string

	obterEntrada := func(chave string) *entradaConsolidacao {
		e, ok := entradas[chave]
		if !ok {
			e = &entradaConsolidacao{
				partes:     make(map[string]*acumuladoParte),
				filamentos: make(map[string]*acumuladoFilamento),
				insumos:    make(map[string]*acumuladoInsumo),
			}
			entradas[chave] = e
			ordemChaves = append(ordemChaves, chave)
		}
		return e
	}

	statusPorID := make(map[uuid.UUID]string)
	criacaoPorID := make(map[uuid.UUID]time.Time)

	// 1. semear o mapa de consolidação com os grupos já persistidos
	for _, g := range existentes {
		e := obterEntrada(chaveDeGrupo(g))
		e.idsExistentes = append(e.idsExistentes, g.ID)
		e.quantidadeMaxima = menorLimite(e.quantidadeMaxima, g.QuantidadeMaxima)
		if e.templateID == "" {
			e.parteID = g.FonteParteID
			e.nomeParte = g.FonteNome
			e.templateID = g.TemplateID
			e.nomeGrupo = g.Nome
			e.modeloID = g.ModeloID
			e.kitID = g.KitID
		}
		// origens do próprio pedido são substituídas pela extração corrente
		for _, o := range g.Origens {
			if o.PedidoID != pedidoID {
				adicionarOrigem(e, o)
			}
		}
		statusPorID[g.ID] = g.Status
		criacaoPorID[g.ID] = g.DataCriacao
	}

	// 2. mesclar as ocorrências correntes pelos mesmos critérios de chave
	for _, oc := range ocorrencias {
		e := obterEntrada(chaveDeOcorrencia(oc))
		if e.templateID == "" {
			e.parteID = oc.ParteID
			e.nomeParte = oc.NomeParte
			e.templateID = oc.GrupoID
			e.nomeGrupo = oc.Nome
			e.modeloID = oc.ModeloID
			e.kitID = oc.KitID
		}
		e.quantidadeMaxima = menorLimite(e.quantidadeMaxima, oc.QuantidadeMaxima)

		for _, p := range oc.Partes {
			acc, ok := e.partes[p.ParteID]
			if !ok {
				acc = &acumuladoParte{nome: p.Nome, necessitaMontagem: p.NecessitaMontagem}
				e.partes[p.ParteID] = acc
				e.ordemPartes = append(e.ordemPartes, p.ParteID)
			}
			acc.quantidade += p.Quantidade
		}
		for _, f := range oc.Filamentos {
			id := chaveFilamento(f)
			acc, ok := e.filamentos[id]
			if !ok {
				acc = &acumuladoFilamento{grupoFilamentoID: f.GrupoFilamentoID, insumoID: f.InsumoID, nome: f.Nome}
				e.filamentos[id] = acc
				e.ordemFilamentos = append(e.ordemFilamentos, id)
			}
			acc.gramas += f.QuantidadeGramas
		}
		for _, ins := range oc.OutrosInsumos {
			acc, ok := e.insumos[ins.InsumoID]
			if !ok {
				acc = &acumuladoInsumo{nome: ins.Nome}
				e.insumos[ins.InsumoID] = acc
				e.ordemInsumos = append(e.ordemInsumos, ins.InsumoID)
			}
			acc.quantidade += ins.Quantidade
		}
		e.tempoTotal += oc.TempoImpressao
		e.pesoTotal += oc.PesoFilamento

		adicionarOrigem(e, dominio.OrigemPedido{
			PedidoID:      pedidoID,
			NumeroPedido:  numeroPedido,
			GrupoOrigemID: oc.GrupoID,
			ModeloID:      oc.ModeloID,
			KitID:         oc.KitID,
		})
	}

	// 3. re-separar cada entrada em lotes limitados pelo teto
	resultado := ResultadoConsolidacao{}
	reutilizados := make(map[uuid.UUID]bool)

	for _, chave := range ordemChaves {
		e := entradas[chave]

		total, err := totalRepresentativo(e)
		if err != nil {
			return ResultadoConsolidacao{}, err
		}
		if total == 0 {
			// chave sumiu do pedido: os ids existentes ficam para remoção
			continue
		}

		restante := total
		idx := 0
		for restante > 0 {
			qtd := restante
			if e.quantidadeMaxima > 0 && qtd > e.quantidadeMaxima {
				qtd = e.quantidadeMaxima
			}
			fracao := float64(qtd) / float64(total)

			g := dominio.GrupoProducao{
				FonteParteID:       e.parteID,
				FonteTipo:          dominio.TipoItemPeca,
				FonteNome:          e.nomeParte,
				TemplateID:         e.templateID,
				Nome:               e.nomeGrupo,
				ModeloID:           e.modeloID,
				KitID:              e.kitID,
				Status:             dominio.StatusGrupoAguardando,
				QuantidadeOriginal: total,
				QuantidadeProduzir: qtd,
				QuantidadeMaxima:   e.quantidadeMaxima,
				TempoImpressao:     e.tempoTotal * fracao,
				PesoFilamento:      e.pesoTotal * fracao,
				Partes:             make(dominio.MapaPartes, len(e.partes)),
				Origens:            append(dominio.ListaOrigens(nil), e.origens...),
			}

			totalPartes := 0
			for _, id := range e.ordemPartes {
				acc := e.partes[id]
				q := int(math.Ceil(float64(acc.quantidade) * fracao))
				g.Partes[id] = dominio.ParteProducao{
					Nome:              acc.nome,
					Quantidade:        q,
					NecessitaMontagem: acc.necessitaMontagem,
				}
				totalPartes += q
			}
			g.QuantidadeTotalPartes = totalPartes

			for _, id := range e.ordemFilamentos {
				acc := e.filamentos[id]
				g.Filamentos = append(g.Filamentos, dominio.FilamentoTemplate{
					GrupoFilamentoID: acc.grupoFilamentoID,
					InsumoID:         acc.insumoID,
					Nome:             acc.nome,
					QuantidadeGramas: math.Ceil(acc.gramas * fracao),
				})
			}
			for _, id := range e.ordemInsumos {
				acc := e.insumos[id]
				g.OutrosInsumos = append(g.OutrosInsumos, dominio.InsumoTemplate{
					InsumoID:   id,
					Nome:       acc.nome,
					Quantidade: math.Ceil(acc.quantidade * fracao),
				})
			}

			// reutiliza o próximo id ainda não consumido, preservando a
			// identidade (e o status) de lotes que continuam existindo
			if idx < len(e.idsExistentes) {
				id := e.idsExistentes[idx]
				g.ID = id
				g.Status = statusPorID[id]
				g.DataCriacao = criacaoPorID[id]
				reutilizados[id] = true
			}

			resultado.Upserts = append(resultado.Upserts, g)
			restante -= qtd
			idx++
		}
	}

	// 4. ids existentes nunca reutilizados estão obsoletos
	for _, g := range existentes {
		if !reutilizados[g.ID] {
			resultado.Remover = append(resultado.Remover, g.ID)
		}
	}

	return resultado, nil
}

// totalRepresentativo devolve o total do primeiro subcomponente, validando o
// invariante de que todos os subcomponentes acumularam o mesmo total.
func totalRepresentativo(e *entradaConsolidacao) (int, error) {
	if len(e.ordemPartes) == 0 {
		return 0, nil
	}
	total := e.partes[e.ordemPartes[0]].quantidade
	for _, id := range e.ordemPartes {
		if e.partes[id].quantidade != total {
			return 0, fmt.Errorf("%w: template %s", ErrTotaisDivergentes, e.templateID)
		}
	}
	return total, nil
}

// chaveDeOcorrencia calcula a identidade estrutural de uma ocorrência.
// Templates de unidade única são chaveados pela tripla (peça, template,
// grupo) para que instâncias de templates distintos nunca se confundam;
// templates com teto maior são fungíveis apenas sob lista de materiais
// idêntica.
func chaveDeOcorrencia(oc OcorrenciaGrupoImpressao) string {
	if oc.QuantidadeMaxima == 1 {
		return chaveUnitaria(oc.ParteID, oc.GrupoID)
	}
	var partes, filamentos, insumos []string
	for _, p := range oc.Partes {
		partes = append(partes, p.ParteID+":"+p.Nome)
	}
	for _, f := range oc.Filamentos {
		filamentos = append(filamentos, chaveFilamento(f)+":"+f.Nome)
	}
	for _, ins := range oc.OutrosInsumos {
		insumos = append(insumos, ins.InsumoID+":"+ins.Nome)
	}
	return assinatura(partes, filamentos, insumos)
}

// chaveDeGrupo calcula a mesma identidade estrutural para um grupo já
// persistido, de modo que lotes antigos e ocorrências novas se encontrem.
func chaveDeGrupo(g dominio.GrupoProducao) string {
	if g.QuantidadeMaxima == 1 {
		return chaveUnitaria(g.FonteParteID, g.TemplateID)
	}
	var partes, filamentos, insumos []string
	for id, p := range g.Partes {
		partes = append(partes, id+":"+p.Nome)
	}
	for _, f := range g.Filamentos {
		filamentos = append(filamentos, chaveFilamento(f)+":"+f.Nome)
	}
	for _, ins := range g.OutrosInsumos {
		insumos = append(insumos, ins.InsumoID+":"+ins.Nome)
	}
	return assinatura(partes, filamentos, insumos)
}

func chaveUnitaria(parteID uuid.UUID, templateID string) string {
	return "unitario|" + parteID.String() + "|" + templateID
}

func assinatura(partes, filamentos, insumos []string) string {
	sort.Strings(partes)
	sort.Strings(filamentos)
	sort.Strings(insumos)
	return "p:" + strings.Join(partes, ",") +
		"|f:" + strings.Join(filamentos, ",") +
		"|i:" + strings.Join(insumos, ",")
}

func chaveFilamento(f dominio.FilamentoTemplate) string {
	if f.GrupoFilamentoID != "" {
		return f.GrupoFilamentoID
	}
	return f.InsumoID
}

// menorLimite aperta o teto de lote tratando 0 como ilimitado.
func menorLimite(a, b int) int {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if b < a {
		return b
	}
	return a
}

func adicionarOrigem(e *entradaConsolidacao, nova dominio.OrigemPedido) {
	for _, o := range e.origens {
		if o == nova {
			return
		}
	}
	e.origens = append(e.origens, nova)
}
