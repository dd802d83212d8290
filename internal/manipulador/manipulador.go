package manipulador

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"servico-producao/internal/dominio"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handlers struct {
	DB *gorm.DB
}

// criarEventoOutbox grava o evento na mesma transação da escrita que o
// originou; o publicador entrega depois.
func criarEventoOutbox(tx *gorm.DB, tipo string, idAgregado uuid.UUID, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("falha ao serializar payload: %w", err)
	}

	evento := dominio.EventoOutbox{
		TipoEvento:     tipo,
		IdAgregado:     idAgregado,
		Payload:        string(payloadJSON),
		DataOcorrencia: time.Now(),
	}
	if err := tx.Create(&evento).Error; err != nil {
		return fmt.Errorf("falha ao criar evento outbox: %w", err)
	}

	log.Printf("[outbox] Evento criado: %s para agregado %s", tipo, idAgregado)
	return nil
}
