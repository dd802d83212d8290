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

// GET /api/v1/grupos-producao
func (h *Handlers) ListarGruposProducao(c *gin.Context) {
	var grupos []dominio.GrupoProducao

	query := h.DB.Order("data_criacao ASC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if parte := c.Query("parteId"); parte != "" {
		parteID, err := uuid.Parse(parte)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "parteId inválido"})
			return
		}
		query = query.Where("fonte_parte_id = ?", parteID)
	}

	if err := query.Find(&grupos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar grupos de produção"})
		return
	}

	c.JSON(http.StatusOK, grupos)
}

// PATCH /api/v1/grupos-producao/:id/status avança o lote no fluxo
// aguardando → em_producao → produzido.
func (h *Handlers) AtualizarStatusGrupo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=em_producao produzido"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	var grupo dominio.GrupoProducao
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&grupo, "id = ?", id).Error; err != nil {
			return err
		}

		var errTransicao error
		switch req.Status {
		case dominio.StatusGrupoEmProducao:
			errTransicao = grupo.IniciarProducao()
		case dominio.StatusGrupoProduzido:
			errTransicao = grupo.ConcluirProducao()
		}
		if errTransicao != nil {
			return errTransicao
		}

		return tx.Save(&grupo).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Grupo não encontrado"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"erro": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grupo)
}
