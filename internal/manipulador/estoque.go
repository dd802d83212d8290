package manipulador

import (
	"errors"
	"net/http"

	"servico-producao/internal/dominio"
	"servico-producao/internal/estoque"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// POST /api/v1/grupos-filamento
func (h *Handlers) CriarGrupoFilamento(c *gin.Context) {
	var grupo dominio.GrupoFilamento
	if err := c.ShouldBindJSON(&grupo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}
	if grupo.Nome == "" {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "nome é obrigatório"})
		return
	}

	if err := h.DB.Create(&grupo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar grupo de filamento"})
		return
	}
	c.JSON(http.StatusCreated, grupo)
}

// GET /api/v1/grupos-filamento
func (h *Handlers) ListarGruposFilamento(c *gin.Context) {
	var grupos []dominio.GrupoFilamento
	if err := h.DB.Find(&grupos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar grupos de filamento"})
		return
	}
	c.JSON(http.StatusOK, grupos)
}

// POST /api/v1/grupos-filamento/:id/spools é o único caminho legal para
// adicionar massa de filamento ao estoque: cria o spool fechado e cheio,
// com o próximo número sequencial, e recalcula o agregado do grupo.
func (h *Handlers) CriarSpool(c *gin.Context) {
	grupoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var req struct {
		PesoLiquido   float64 `json:"pesoLiquido" binding:"required,gt=0"`
		CustoPorGrama float64 `json:"custoPorGrama" binding:"gte=0"`
		Nome          string  `json:"nome"`
		Cor           string  `json:"cor"`
		Fabricante    string  `json:"fabricante"`
		Material      string  `json:"material"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	var spool dominio.Spool
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var grupo dominio.GrupoFilamento
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&grupo, "id = ?", grupoID).Error; err != nil {
			return err
		}

		var maiorNumero int
		if err := tx.Model(&dominio.Spool{}).
			Where("grupo_filamento_id = ?", grupoID).
			Select("COALESCE(MAX(numero), 0)").
			Scan(&maiorNumero).Error; err != nil {
			return err
		}

		spool = dominio.Spool{
			GrupoFilamentoID: grupoID,
			Numero:           maiorNumero + 1,
			PesoLiquido:      req.PesoLiquido,
			EstoqueAtual:     req.PesoLiquido,
			CustoPorGrama:    req.CustoPorGrama,
			Nome:             req.Nome,
			Cor:              req.Cor,
			Fabricante:       req.Fabricante,
			Material:         req.Material,
		}
		if err := tx.Create(&spool).Error; err != nil {
			return err
		}

		return estoque.RecalcularAgregado(tx, &grupo)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Grupo de filamento não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar spool"})
		return
	}

	c.JSON(http.StatusCreated, spool)
}

// GET /api/v1/grupos-filamento/:id/spools
func (h *Handlers) ListarSpools(c *gin.Context) {
	grupoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var spools []dominio.Spool
	if err := h.DB.Where("grupo_filamento_id = ?", grupoID).
		Order("numero ASC").
		Find(&spools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar spools"})
		return
	}
	c.JSON(http.StatusOK, spools)
}

// POST /api/v1/lancamentos registra o movimento como pendente; o consumidor
// processa de forma assíncrona e o resultado fica visível em status e
// mensagemErro do próprio lançamento.
func (h *Handlers) CriarLancamento(c *gin.Context) {
	var req struct {
		InsumoID         string  `json:"insumoId" binding:"required"`
		EhFilamento      bool    `json:"ehFilamento"`
		TipoMovimento    string  `json:"tipoMovimento" binding:"required,oneof=entrada saida ajuste"`
		Quantidade       float64 `json:"quantidade" binding:"required"`
		OrigemLancamento string  `json:"origemLancamento" binding:"omitempty,oneof=producao pesagem"`
		Local            string  `json:"local"`
		Recipiente       string  `json:"recipiente"`
		Divisao          string  `json:"divisao"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}

	insumoID, err := uuid.Parse(req.InsumoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "insumoId inválido"})
		return
	}

	lancamento := dominio.LancamentoInsumo{
		InsumoID:         insumoID,
		EhFilamento:      req.EhFilamento,
		TipoMovimento:    req.TipoMovimento,
		Quantidade:       req.Quantidade,
		OrigemLancamento: req.OrigemLancamento,
		Local:            req.Local,
		Recipiente:       req.Recipiente,
		Divisao:          req.Divisao,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lancamento).Error; err != nil {
			return err
		}
		return criarEventoOutbox(tx, dominio.EventoLancamentoCriado, lancamento.ID,
			gin.H{"lancamentoId": lancamento.ID.String()})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao criar lançamento"})
		return
	}

	c.JSON(http.StatusCreated, lancamento)
}

// GET /api/v1/lancamentos/:id
func (h *Handlers) BuscarLancamento(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var lancamento dominio.LancamentoInsumo
	if err := h.DB.First(&lancamento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "Lançamento não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao buscar lançamento"})
		return
	}

	c.JSON(http.StatusOK, lancamento)
}

// GET /api/v1/notificacoes
func (h *Handlers) ListarNotificacoes(c *gin.Context) {
	var notificacoes []dominio.NotificacaoSpool

	query := h.DB.Order("data_criacao DESC")
	if grupo := c.Query("grupoFilamentoId"); grupo != "" {
		grupoID, err := uuid.Parse(grupo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "grupoFilamentoId inválido"})
			return
		}
		query = query.Where("grupo_filamento_id = ?", grupoID)
	}

	if err := query.Find(&notificacoes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar notificações"})
		return
	}
	c.JSON(http.StatusOK, notificacoes)
}

// GET /api/v1/insumos/:id/posicoes
func (h *Handlers) ListarPosicoes(c *gin.Context) {
	insumoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "ID inválido"})
		return
	}

	var posicoes []dominio.PosicaoEstoque
	if err := h.DB.Where("insumo_id = ?", insumoID).Find(&posicoes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "Falha ao listar posições"})
		return
	}
	c.JSON(http.StatusOK, posicoes)
}
