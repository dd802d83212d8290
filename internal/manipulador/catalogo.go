package manipulador

import (
	"net/http"

	"servico-producao/internal/dominio"

	"github.com/gin-gonic/gin"
)

// POST /api/v1/pecas
func (h *Handlers) CriarPeca(c *gin.Context) {
	var peca dominio.Peca
	if err := c.ShouldBindJSON(&peca); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}
	if peca.SKU == "" || peca.Nome == "" {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "sku e nome são obrigatórios"})
		return
	}
	for _, tpl := range peca.GruposImpressao {
		if tpl.Identificador == "" || len(tpl.Partes) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "template de impressão precisa de identificador e partes"})
			return
		}
		if tpl.QuantidadeMaxima < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "quantidadeMaxima não pode ser negativa"})
			return
		}
	}

	if err := h.DB.Create(&peca).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar peça"})
		return
	}
	c.JSON(http.StatusCreated, peca)
}

// GET /api/v1/pecas
func (h *Handlers) ListarPecas(c *gin.Context) {
	var pecas []dominio.Peca
	if err := h.DB.Find(&pecas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar peças"})
		return
	}
	c.JSON(http.StatusOK, pecas)
}

// POST /api/v1/modelos
func (h *Handlers) CriarModelo(c *gin.Context) {
	var modelo dominio.Modelo
	if err := c.ShouldBindJSON(&modelo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}
	if modelo.Nome == "" || len(modelo.Partes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "nome e partes são obrigatórios"})
		return
	}

	if err := h.DB.Create(&modelo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar modelo"})
		return
	}
	c.JSON(http.StatusCreated, modelo)
}

// GET /api/v1/modelos
func (h *Handlers) ListarModelos(c *gin.Context) {
	var modelos []dominio.Modelo
	if err := h.DB.Find(&modelos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar modelos"})
		return
	}
	c.JSON(http.StatusOK, modelos)
}

// POST /api/v1/kits
func (h *Handlers) CriarKit(c *gin.Context) {
	var kit dominio.Kit
	if err := c.ShouldBindJSON(&kit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}
	if kit.Nome == "" || len(kit.Modelos) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "nome e modelos são obrigatórios"})
		return
	}

	if err := h.DB.Create(&kit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar kit"})
		return
	}
	c.JSON(http.StatusCreated, kit)
}

// GET /api/v1/kits
func (h *Handlers) ListarKits(c *gin.Context) {
	var kits []dominio.Kit
	if err := h.DB.Find(&kits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar kits"})
		return
	}
	c.JSON(http.StatusOK, kits)
}
