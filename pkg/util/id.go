package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode   *snowflake.Node
	idNodeMu sync.Mutex
)

// InitIDNode inicializa el nodo snowflake del proceso (llamar en el arranque).
// nodeID debe ser único por instancia desplegada.
func InitIDNode(nodeID int64) error {
	idNodeMu.Lock()
	defer idNodeMu.Unlock()

	if idNode != nil {
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	idNode = n
	return nil
}

// GenID genera un id snowflake. Se usa para ids de eventos de auditoría, que
// deben ser únicos incluso entre reinicios del proceso (los ids de mensajes y
// reportes son autoincrementales de la base, por contrato del esquema).
func GenID() int64 {
	idNodeMu.Lock()
	defer idNodeMu.Unlock()

	if idNode == nil {
		// nodo 0 por defecto; solo puede fallar con nodeID fuera de rango
		n, err := snowflake.NewNode(0)
		if err != nil {
			return 0
		}
		idNode = n
	}
	return idNode.Generate().Int64()
}
