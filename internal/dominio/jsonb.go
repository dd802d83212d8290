package dominio

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// helpers para campos jsonb do Postgres

func valorJSONB(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar jsonb: %w", err)
	}
	return string(b), nil
}

func lerJSONB(destino interface{}, valor interface{}) error {
	switch b := valor.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(b, destino)
	case string:
		return json.Unmarshal([]byte(b), destino)
	default:
		return fmt.Errorf("tipo jsonb inesperado: %T", valor)
	}
}
