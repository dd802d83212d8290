package dominio

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParteTemplate é um subcomponente produzido por uma rodada de impressão.
type ParteTemplate struct {
	ParteID           string `json:"parteId"`
	Nome              string `json:"nome"`
	Quantidade        int    `json:"quantidade"`
	NecessitaMontagem bool   `json:"necessitaMontagem"`
}

// FilamentoTemplate referencia um grupo de filamento OU um insumo avulso.
type FilamentoTemplate struct {
	GrupoFilamentoID string  `json:"grupoFilamentoId,omitempty"`
	InsumoID         string  `json:"insumoId,omitempty"`
	Nome             string  `json:"nome"`
	QuantidadeGramas float64 `json:"quantidadeGramas"`
}

type InsumoTemplate struct {
	InsumoID   string  `json:"insumoId"`
	Nome       string  `json:"nome"`
	Quantidade float64 `json:"quantidade"`
}

// GrupoImpressaoTemplate é a receita imutável de uma rodada de impressão:
// produz 1..N itens idênticos de uma vez.
type GrupoImpressaoTemplate struct {
	Identificador    string              `json:"identificador"`
	Nome             string              `json:"nome"`
	Partes           []ParteTemplate     `json:"partes"`
	Filamentos       []FilamentoTemplate `json:"filamentos"`
	OutrosInsumos    []InsumoTemplate    `json:"outrosInsumos,omitempty"`
	TempoImpressao   float64             `json:"tempoImpressao"`             // minutos
	PesoFilamento    float64             `json:"pesoFilamento"`              // gramas
	QuantidadeMaxima int                 `json:"quantidadeMaxima,omitempty"` // 0 = sem limite por job
}

type GruposImpressao []GrupoImpressaoTemplate

func (g GruposImpressao) Value() (driver.Value, error) { return valorJSONB(g) }
func (g *GruposImpressao) Scan(v interface{}) error    { return lerJSONB(g, v) }

// Peca é um produto imprimível do catálogo.
type Peca struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SKU             string          `gorm:"unique;not null" json:"sku"`
	Nome            string          `gorm:"not null" json:"nome"`
	GruposImpressao GruposImpressao `gorm:"type:jsonb" json:"gruposImpressao"`
	DataCriacao     time.Time       `gorm:"not null" json:"dataCriacao"`
}

type ItemModelo struct {
	ParteID    uuid.UUID `json:"parteId"`
	Quantidade int       `json:"quantidade"`
}

type ItensModelo []ItemModelo

func (i ItensModelo) Value() (driver.Value, error) { return valorJSONB(i) }
func (i *ItensModelo) Scan(v interface{}) error    { return lerJSONB(i, v) }

// Modelo agrupa peças com multiplicidades.
type Modelo struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	Nome        string      `gorm:"not null" json:"nome"`
	Partes      ItensModelo `gorm:"type:jsonb" json:"partes"`
	DataCriacao time.Time   `gorm:"not null" json:"dataCriacao"`
}

type ItemKit struct {
	ModeloID   uuid.UUID `json:"modeloId"`
	Quantidade int       `json:"quantidade"`
}

type ItensKit []ItemKit

func (i ItensKit) Value() (driver.Value, error) { return valorJSONB(i) }
func (i *ItensKit) Scan(v interface{}) error    { return lerJSONB(i, v) }

// Kit agrupa modelos com multiplicidades.
type Kit struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Nome        string    `gorm:"not null" json:"nome"`
	Modelos     ItensKit  `gorm:"type:jsonb" json:"modelos"`
	DataCriacao time.Time `gorm:"not null" json:"dataCriacao"`
}

func (p *Peca) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.DataCriacao.IsZero() {
		p.DataCriacao = time.Now()
	}
	return nil
}

func (m *Modelo) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.DataCriacao.IsZero() {
		m.DataCriacao = time.Now()
	}
	return nil
}

func (k *Kit) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.DataCriacao.IsZero() {
		k.DataCriacao = time.Now()
	}
	return nil
}

func (p *Peca) TableName() string   { return "pecas" }
func (m *Modelo) TableName() string { return "modelos" }
func (k *Kit) TableName() string    { return "kits" }
