package dominio

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListaUUIDs []uuid.UUID

func (l ListaUUIDs) Value() (driver.Value, error) { return valorJSONB(l) }
func (l *ListaUUIDs) Scan(v interface{}) error    { return lerJSONB(l, v) }

// Spool é uma bobina física de filamento. Criada fechada e cheia pelo fluxo
// de cadastro; aberta no primeiro débito; finalizada quando o estoque chega
// a zero. Nunca reaberta.
type Spool struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	GrupoFilamentoID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"grupoFilamentoId"`
	Numero             int        `gorm:"not null" json:"numero"`
	PesoLiquido        float64    `gorm:"not null" json:"pesoLiquido"`
	EstoqueAtual       float64    `gorm:"not null" json:"estoqueAtual"`
	CustoPorGrama      float64    `json:"custoPorGrama"`
	Aberto             bool       `gorm:"not null" json:"aberto"`
	DataAbertura       *time.Time `json:"dataAbertura,omitempty"`
	DataFim            *time.Time `json:"dataFim,omitempty"`
	LancamentosConsumo ListaUUIDs `gorm:"type:jsonb" json:"lancamentosConsumo,omitempty"`
	ConsumoProducao    float64    `json:"consumoProducao"`
	ConsumoReal        float64    `json:"consumoReal"`
	Nome               string     `json:"nome"`
	Cor                string     `json:"cor"`
	Fabricante         string     `json:"fabricante"`
	Material           string     `json:"material"`
	DataCriacao        time.Time  `gorm:"not null" json:"dataCriacao"`
}

func (s *Spool) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.DataCriacao.IsZero() {
		s.DataCriacao = time.Now()
	}
	if s.EstoqueAtual == 0 && s.DataFim == nil {
		s.EstoqueAtual = s.PesoLiquido
	}
	return nil
}

func (s *Spool) Finalizado() bool { return s.DataFim != nil }

func (s *Spool) TemEstoque() bool { return s.EstoqueAtual > 0 }

// Abrir marca a primeira utilização do spool.
func (s *Spool) Abrir(agora time.Time) error {
	if s.Finalizado() {
		return errors.New("spool finalizado não pode ser reaberto")
	}
	if s.Aberto {
		return errors.New("spool já está aberto")
	}
	s.Aberto = true
	s.DataAbertura = &agora
	return nil
}

func (s *Spool) TableName() string { return "spools" }

// GrupoFilamento é o agregado de todos os spools de um mesmo filamento.
// Os campos de estoque são derivados: recalculados sempre que um spool
// irmão muda.
type GrupoFilamento struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Nome                 string     `gorm:"not null" json:"nome"`
	Cor                  string     `json:"cor"`
	Material             string     `json:"material"`
	Fabricante           string     `json:"fabricante"`
	EstoqueTotalGramas   float64    `json:"estoqueTotalGramas"`
	CustoMedioPonderado  float64    `json:"custoMedioPonderado"`
	SpoolsEmEstoque      ListaUUIDs `gorm:"type:jsonb" json:"spoolsEmEstoque,omitempty"`
	ConsumoProducaoTotal float64    `json:"consumoProducaoTotal"`
	ConsumoRealTotal     float64    `json:"consumoRealTotal"`
	DataCriacao          time.Time  `gorm:"not null" json:"dataCriacao"`
	DataAtualizacao      time.Time  `json:"dataAtualizacao"`
}

func (g *GrupoFilamento) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.DataCriacao.IsZero() {
		g.DataCriacao = time.Now()
	}
	return nil
}

func (g *GrupoFilamento) TableName() string { return "grupos_filamento" }
