package manipulador

import (
	"errors"
	"net/http"

	"servico-producao/internal/dominio"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type itemPedidoReq struct {
	Tipo       string `json:"tipo" binding:"required,oneof=peca modelo kit"`
	ProdutoID  string `json:"produtoId" binding:"required"`
	Quantidade int    `json:"quantidade" binding:"required,min=1"`
}

func montarItens(pedidoID uuid.UUID, reqs []itemPedidoReq) ([]dominio.ItemPedido, error) {
	itens := make([]dominio.ItemPedido, 0, len(reqs))
	for _, r := range reqs {
		prodID, err := uuid.Parse(r.ProdutoID)
		if err != nil {
			return nil, errors.New("produtoId inválido: " + r.ProdutoID)
		}
		itens = append(itens, dominio.ItemPedido{
			PedidoID:   pedidoID,
			Tipo:       r.Tipo,
			ProdutoID:  prodID,
			Quantidade: r.Quantidade,
		})
	}
	return itens, nil
}

// POST /api/v1/pedidos
func (h *Handlers) CriarPedido(c *gin.Context) {
	var req struct {
		Numero  string          `json:"numero" binding:"required"`
		Cliente string          `json:"cliente"`
		Itens   []itemPedidoReq `json:"itens" binding:"required,min=1,dive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	pedido := dominio.Pedido{
		Numero:  req.Numero,
		Cliente: req.Cliente,
		Status:  dominio.StatusPedidoAberto,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pedido).Error; err != nil {
			return err
		}
		itens, err := montarItens(pedido.ID, req.Itens)
		if err != nil {
			return err
		}
		if err := tx.Create(&itens).Error; err != nil {
			return err
		}
		pedido.Itens = itens
		return criarEventoOutbox(tx, dominio.EventoPedidoAlterado, pedido.ID,
			gin.H{"pedidoId": pedido.ID.String()})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar pedido"})
		return
	}

	c.JSON(http.StatusCreated, pedido)
}

// GET /api/v1/pedidos
func (h *Handlers) ListarPedidos(c *gin.Context) {
	var pedidos []dominio.Pedido

	query := h.DB.Preload("Itens")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&pedidos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar pedidos"})
		return
	}

	c.JSON(http.StatusOK, pedidos)
}

// GET /api/v1/pedidos/:id
func (h *Handlers) BuscarPedido(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var pedido dominio.Pedido
	if err := h.DB.Preload("Itens").First(&pedido, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Pedido não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao buscar pedido"})
		return
	}

	c.JSON(http.StatusOK, pedido)
}

// PUT /api/v1/pedidos/:id/itens substitui as linhas do pedido e dispara a
// reconsolidação dos grupos de produção.
func (h *Handlers) AtualizarItensPedido(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var req struct {
		Itens []itemPedidoReq `json:"itens" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	var pedido dominio.Pedido
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pedido, "id = ?", id).Error; err != nil {
			return err
		}
		if pedido.Status != dominio.StatusPedidoAberto {
			return errPedidoNaoAberto
		}
		if err := tx.Delete(&dominio.ItemPedido{}, "pedido_id = ?", id).Error; err != nil {
			return err
		}
		itens, err := montarItens(id, req.Itens)
		if err != nil {
			return err
		}
		if err := tx.Create(&itens).Error; err != nil {
			return err
		}
		pedido.Itens = itens
		return criarEventoOutbox(tx, dominio.EventoPedidoAlterado, id,
			gin.H{"pedidoId": id.String()})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Pedido não encontrado"})
			return
		}
		if errors.Is(err, errPedidoNaoAberto) {
			c.JSON(http.StatusConflict, gin.H{"erro": "Pedido não está aberto"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao atualizar pedido"})
		return
	}

	c.JSON(http.StatusOK, pedido)
}

var errPedidoNaoAberto = errors.New("pedido não está aberto")

// POST /api/v1/pedidos/:id/cancelar
func (h *Handlers) CancelarPedido(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var pedido dominio.Pedido
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pedido, "id = ?", id).Error; err != nil {
			return err
		}
		if err := pedido.Cancelar(); err != nil {
			return errPedidoNaoAberto
		}
		if err := tx.Save(&pedido).Error; err != nil {
			return err
		}
		return criarEventoOutbox(tx, dominio.EventoPedidoAlterado, id,
			gin.H{"pedidoId": id.String()})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Pedido não encontrado"})
			return
		}
		if errors.Is(err, errPedidoNaoAberto) {
			c.JSON(http.StatusConflict, gin.H{"erro": "Pedido não está aberto"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao cancelar pedido"})
		return
	}

	c.JSON(http.StatusOK, pedido)
}

// DELETE /api/v1/pedidos/:id
func (h *Handlers) RemoverPedido(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&dominio.Pedido{}, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&dominio.ItemPedido{}, "pedido_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&dominio.Pedido{}, "id = ?", id).Error; err != nil {
			return err
		}
		return criarEventoOutbox(tx, dominio.EventoPedidoAlterado, id,
			gin.H{"pedidoId": id.String()})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Pedido não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao remover pedido"})
		return
	}

	c.Status(http.StatusNoContent)
}
