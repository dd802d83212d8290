package dominio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TipoMovimentoEntrada = "entrada"
	TipoMovimentoSaida   = "saida"
	TipoMovimentoAjuste  = "ajuste"
)

const (
	OrigemLancamentoProducao = "producao"
	OrigemLancamentoPesagem  = "pesagem"
)

const (
	StatusLancamentoPendente   = "pendente"
	StatusLancamentoProcessado = "processado"
	StatusLancamentoFalhou     = "falhou"
)

// LancamentoInsumo é um movimento de estoque. É processado de forma
// assíncrona; o resultado do processamento fica visível em Status e
// MensagemErro.
type LancamentoInsumo struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	InsumoID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"insumoId"`
	EhFilamento       bool       `gorm:"not null" json:"ehFilamento"`
	TipoMovimento     string     `gorm:"not null" json:"tipoMovimento"` // entrada, saida, ajuste
	Quantidade        float64    `gorm:"not null" json:"quantidade"`
	OrigemLancamento  string     `json:"origemLancamento"` // producao, pesagem
	Local             string     `json:"local,omitempty"`
	Recipiente        string     `json:"recipiente,omitempty"`
	Divisao           string     `json:"divisao,omitempty"`
	Status            string     `gorm:"not null;index" json:"status"`
	MensagemErro      *string    `json:"mensagemErro,omitempty"`
	DataCriacao       time.Time  `gorm:"not null" json:"dataCriacao"`
	DataProcessamento *time.Time `json:"dataProcessamento,omitempty"`
}

func (l *LancamentoInsumo) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.DataCriacao.IsZero() {
		l.DataCriacao = time.Now()
	}
	if l.Status == "" {
		l.Status = StatusLancamentoPendente
	}
	if l.OrigemLancamento == "" {
		l.OrigemLancamento = OrigemLancamentoProducao
	}
	return nil
}

func (l *LancamentoInsumo) TableName() string { return "lancamentos_insumo" }

// NotificacaoSpool avisa o operador que um spool novo foi aberto.
type NotificacaoSpool struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SpoolID          uuid.UUID `gorm:"type:uuid;not null" json:"spoolId"`
	GrupoFilamentoID uuid.UUID `gorm:"type:uuid;not null;index" json:"grupoFilamentoId"`
	NumeroSpool      int       `json:"numeroSpool"`
	Mensagem         string    `json:"mensagem"`
	DataCriacao      time.Time `gorm:"not null" json:"dataCriacao"`
}

func (n *NotificacaoSpool) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.DataCriacao.IsZero() {
		n.DataCriacao = time.Now()
	}
	return nil
}

func (n *NotificacaoSpool) TableName() string { return "notificacoes_spool" }

// PosicaoEstoque é uma linha do razão posicional de insumos não-filamento:
// quanto de um insumo existe em cada local/recipiente/divisão.
type PosicaoEstoque struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InsumoID   uuid.UUID `gorm:"type:uuid;not null;index" json:"insumoId"`
	Local      string    `gorm:"not null" json:"local"`
	Recipiente string    `json:"recipiente"`
	Divisao    string    `json:"divisao"`
	Quantidade float64   `gorm:"not null" json:"quantidade"`
}

func (p *PosicaoEstoque) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *PosicaoEstoque) TableName() string { return "posicoes_estoque" }
