package dominio

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPedidoAberto    = "aberto"
	StatusPedidoConcluido = "concluido"
	StatusPedidoCancelado = "cancelado"
)

const (
	TipoItemPeca   = "peca"
	TipoItemModelo = "modelo"
	TipoItemKit    = "kit"
)

// Pedido é um pedido de cliente; cada item referencia uma peça, um modelo
// ou um kit do catálogo.
type Pedido struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Numero        string       `gorm:"unique;not null" json:"numero"`
	Cliente       string       `json:"cliente"`
	Status        string       `gorm:"not null" json:"status"`
	DataCriacao   time.Time    `gorm:"not null" json:"dataCriacao"`
	DataConclusao *time.Time   `json:"dataConclusao,omitempty"`
	Itens         []ItemPedido `gorm:"foreignKey:PedidoID" json:"itens,omitempty"`
}

type ItemPedido struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PedidoID   uuid.UUID `gorm:"type:uuid;not null;index" json:"pedidoId"`
	Tipo       string    `gorm:"not null" json:"tipo"` // peca, modelo, kit
	ProdutoID  uuid.UUID `gorm:"type:uuid;not null" json:"produtoId"`
	Quantidade int       `gorm:"not null" json:"quantidade"`
}

func (p *Pedido) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.DataCriacao.IsZero() {
		p.DataCriacao = time.Now()
	}
	if p.Status == "" {
		p.Status = StatusPedidoAberto
	}
	return nil
}

func (i *ItemPedido) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (p *Pedido) Concluir() error {
	if p.Status != StatusPedidoAberto {
		return errors.New("pedido não está aberto")
	}
	p.Status = StatusPedidoConcluido
	agora := time.Now()
	p.DataConclusao = &agora
	return nil
}

func (p *Pedido) Cancelar() error {
	if p.Status != StatusPedidoAberto {
		return errors.New("pedido não está aberto")
	}
	p.Status = StatusPedidoCancelado
	return nil
}

func (p *Pedido) TableName() string     { return "pedidos" }
func (i *ItemPedido) TableName() string { return "itens_pedido" }
