package dominio

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusGrupoAguardando = "aguardando"
	StatusGrupoEmProducao = "em_producao"
	StatusGrupoProduzido  = "produzido"
)

// ParteProducao é a fatia de um subcomponente alocada a um lote.
type ParteProducao struct {
	Nome              string `json:"nome"`
	Quantidade        int    `json:"quantidade"`
	NecessitaMontagem bool   `json:"necessitaMontagem"`
}

type MapaPartes map[string]ParteProducao

func (m MapaPartes) Value() (driver.Value, error) { return valorJSONB(m) }
func (m *MapaPartes) Scan(v interface{}) error    { return lerJSONB(m, v) }

type ListaFilamentos []FilamentoTemplate

func (l ListaFilamentos) Value() (driver.Value, error) { return valorJSONB(l) }
func (l *ListaFilamentos) Scan(v interface{}) error    { return lerJSONB(l, v) }

type ListaInsumos []InsumoTemplate

func (l ListaInsumos) Value() (driver.Value, error) { return valorJSONB(l) }
func (l *ListaInsumos) Scan(v interface{}) error    { return lerJSONB(l, v) }

// OrigemPedido registra qual linha de pedido contribuiu para um lote.
type OrigemPedido struct {
	PedidoID      uuid.UUID `json:"pedidoId"`
	NumeroPedido  string    `json:"numeroPedido"`
	GrupoOrigemID string    `json:"grupoOrigemId"`
	ModeloID      string    `json:"modeloId,omitempty"`
	KitID         string    `json:"kitId,omitempty"`
}

type ListaOrigens []OrigemPedido

func (l ListaOrigens) Value() (driver.Value, error) { return valorJSONB(l) }
func (l *ListaOrigens) Scan(v interface{}) error    { return lerJSONB(l, v) }

// GrupoProducao é a unidade de trabalho do chão de fábrica: um lote de um
// template de impressão, limitado por quantidade_maxima quando definida.
type GrupoProducao struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	FonteParteID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"fonteParteId"`
	FonteTipo             string          `gorm:"not null" json:"fonteTipo"`
	FonteNome             string          `json:"fonteNome"`
	TemplateID            string          `gorm:"not null" json:"templateId"`
	Nome                  string          `json:"nome"`
	ModeloID              string          `json:"modeloId,omitempty"`
	KitID                 string          `json:"kitId,omitempty"`
	Partes                MapaPartes      `gorm:"type:jsonb" json:"partes"`
	Filamentos            ListaFilamentos `gorm:"type:jsonb" json:"filamentos"`
	OutrosInsumos         ListaInsumos    `gorm:"type:jsonb" json:"outrosInsumos,omitempty"`
	TempoImpressao        float64         `json:"tempoImpressao"`
	PesoFilamento         float64         `json:"pesoFilamento"`
	Status                string          `gorm:"not null;index" json:"status"`
	QuantidadeOriginal    int             `gorm:"not null" json:"quantidadeOriginal"`
	QuantidadeProduzir    int             `gorm:"not null" json:"quantidadeProduzir"`
	QuantidadeMaxima      int             `json:"quantidadeMaxima,omitempty"`
	QuantidadeTotalPartes int             `json:"quantidadeTotalPartes"`
	Origens               ListaOrigens    `gorm:"type:jsonb" json:"origens"`
	DataCriacao           time.Time       `gorm:"not null" json:"dataCriacao"`
	DataAtualizacao       time.Time       `json:"dataAtualizacao"`
}

func (g *GrupoProducao) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.DataCriacao.IsZero() {
		g.DataCriacao = time.Now()
	}
	if g.Status == "" {
		g.Status = StatusGrupoAguardando
	}
	return nil
}

func (g *GrupoProducao) BeforeSave(tx *gorm.DB) error {
	g.DataAtualizacao = time.Now()
	return nil
}

func (g *GrupoProducao) IniciarProducao() error {
	if g.Status != StatusGrupoAguardando {
		return errors.New("grupo não está aguardando produção")
	}
	g.Status = StatusGrupoEmProducao
	return nil
}

func (g *GrupoProducao) ConcluirProducao() error {
	if g.Status != StatusGrupoEmProducao {
		return errors.New("grupo não está em produção")
	}
	g.Status = StatusGrupoProduzido
	return nil
}

func (g *GrupoProducao) TableName() string { return "grupos_producao" }
