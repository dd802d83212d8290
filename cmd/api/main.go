package main

import (
	"log"
	"os"

	"servico-producao/internal/config"
	"servico-producao/internal/consumidor"
	"servico-producao/internal/manipulador"
	"servico-producao/internal/publicador"

	"github.com/gin-gonic/gin"
)

func main() {
	// inicializar DB
	db, err := config.InicializarDB()
	if err != nil {
		log.Fatalf("Erro ao inicializar DB: %v", err)
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// criar handlers
	handlers := &manipulador.Handlers{DB: db}

	// iniciar publicador de eventos (outbox pattern)
	if err := publicador.IniciarPublicador(db); err != nil {
		log.Fatalf("Erro ao iniciar publicador outbox: %v", err)
	}

	// iniciar consumidor RabbitMQ - é ele quem roda os gatilhos de
	// reconsolidação de grupos e de baixa de spools
	if err := consumidor.IniciarConsumidor(db); err != nil {
		log.Fatalf("ERRO CRÍTICO: Falha ao iniciar consumidor RabbitMQ: %v", err)
	}
	log.Println("✓ Consumidor RabbitMQ iniciado com sucesso")

	// setup servidor Gin
	r := gin.Default()

	// CORS simples
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// rotas API
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// catálogo
		v1.POST("/pecas", handlers.CriarPeca)
		v1.GET("/pecas", handlers.ListarPecas)
		v1.POST("/modelos", handlers.CriarModelo)
		v1.GET("/modelos", handlers.ListarModelos)
		v1.POST("/kits", handlers.CriarKit)
		v1.GET("/kits", handlers.ListarKits)

		// pedidos
		v1.POST("/pedidos", handlers.CriarPedido)
		v1.GET("/pedidos", handlers.ListarPedidos)
		v1.GET("/pedidos/:id", handlers.BuscarPedido)
		v1.PUT("/pedidos/:id/itens", handlers.AtualizarItensPedido)
		v1.POST("/pedidos/:id/cancelar", handlers.CancelarPedido)
		v1.DELETE("/pedidos/:id", handlers.RemoverPedido)

		// produção
		v1.GET("/grupos-producao", handlers.ListarGruposProducao)
		v1.PATCH("/grupos-producao/:id/status", handlers.AtualizarStatusGrupo)

		// estoque de filamento
		v1.POST("/grupos-filamento", handlers.CriarGrupoFilamento)
		v1.GET("/grupos-filamento", handlers.ListarGruposFilamento)
		v1.POST("/grupos-filamento/:id/spools", handlers.CriarSpool)
		v1.GET("/grupos-filamento/:id/spools", handlers.ListarSpools)

		// lançamentos e razão posicional
		v1.POST("/lancamentos", handlers.CriarLancamento)
		v1.GET("/lancamentos/:id", handlers.BuscarLancamento)
		v1.GET("/insumos/:id/posicoes", handlers.ListarPosicoes)

		// notificações
		v1.GET("/notificacoes", handlers.ListarNotificacoes)
	}

	porta := os.Getenv("PORTA_HTTP")
	if porta == "" {
		porta = "8080"
	}

	log.Printf("Servidor Produção iniciado na porta %s", porta)
	if err := r.Run(":" + porta); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
}
