package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	rediskey "github.com/BryanHuaPer/viajeros-peru-sub002/consts/redisKey"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EstadoEfectivo normaliza el estado de un mensaje según las capacidades del
// esquema: sin columna estado, la bandera leido sustituye a visto/no visto.
func (c Capacidades) EstadoEfectivo(m model.Mensaje) string {
	if c.TieneEstado {
		return m.Estado
	}
	if m.Leido {
		return model.EstadoVisto
	}
	return model.EstadoEnviado
}

// mensajeRepositoryImpl capa de acceso a datos de mensajes.
type mensajeRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
	caps        Capacidades
}

// NewMensajeRepository crea el repositorio de mensajes.
// redisClient puede ser nil: el conteo de no leídos degrada a solo-BD.
func NewMensajeRepository(db *gorm.DB, redisClient *redis.Client, caps Capacidades) IMensajeRepository {
	return &mensajeRepositoryImpl{db: db, redisClient: redisClient, caps: caps}
}

// columnasMensaje columnas seleccionables según el esquema. Nunca se nombra
// la columna estado en esquemas que no la tienen.
func (r *mensajeRepositoryImpl) columnasMensaje() string {
	cols := "mensajes.id, mensajes.remitente_id, mensajes.destinatario_id, mensajes.anuncio_id, mensajes.contenido, mensajes.leido, mensajes.fecha_envio"
	if r.caps.TieneEstado {
		cols += ", mensajes.estado"
	}
	return cols
}

// condNoVisto condición de "no visto" según el esquema.
func (r *mensajeRepositoryImpl) condNoVisto() string {
	if r.caps.TieneEstado {
		return "estado <> 'visto'"
	}
	return "leido = 0"
}

// aplicarAnuncio acota la consulta al contexto de anuncio.
// NULL solo coincide con NULL: el chat general y el chat de un anuncio son
// conversaciones distintas entre los mismos dos usuarios.
func aplicarAnuncio(tx *gorm.DB, anuncioID *int64) *gorm.DB {
	if anuncioID == nil {
		return tx.Where("anuncio_id IS NULL")
	}
	return tx.Where("anuncio_id = ?", *anuncioID)
}

// Crear inserta el mensaje en estado enviado.
func (r *mensajeRepositoryImpl) Crear(ctx context.Context, mensaje *model.Mensaje) (int64, error) {
	mensaje.Estado = model.EstadoEnviado
	mensaje.Leido = false

	cols := []string{"remitente_id", "destinatario_id", "anuncio_id", "contenido", "leido", "fecha_envio"}
	if r.caps.TieneEstado {
		cols = append(cols, "estado")
	}

	if err := r.db.WithContext(ctx).Select(cols).Create(mensaje).Error; err != nil {
		return 0, WrapDBError(err)
	}

	// el destinatario tiene un mensaje nuevo: invalidar su contador cacheado
	r.invalidarNoLeidos(ctx, mensaje.DestinatarioID)

	return mensaje.ID, nil
}

// ObtenerPorID lee un mensaje con los nombres de ambos participantes.
func (r *mensajeRepositoryImpl) ObtenerPorID(ctx context.Context, id int64) (*model.Mensaje, error) {
	var mensaje model.Mensaje
	err := r.db.WithContext(ctx).Table("mensajes").
		Select(r.columnasMensaje()+", CONCAT(ur.nombre, ' ', ur.apellido) AS remitente_nombre, CONCAT(ud.nombre, ' ', ud.apellido) AS destinatario_nombre").
		Joins("LEFT JOIN usuarios ur ON ur.id = mensajes.remitente_id").
		Joins("LEFT JOIN usuarios ud ON ud.id = mensajes.destinatario_id").
		Where("mensajes.id = ?", id).
		Take(&mensaje).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &mensaje, nil
}

// Conversacion devuelve la página pedida y el total.
// La ventana de paginación se calcula en orden descendente por fecha y la
// página devuelta se reordena ascendente para presentación. Ambos órdenes se
// calculan por separado a propósito: es el comportamiento vigente del sistema
// (con empates de fecha, la página 2 no es continuación exacta de la 1).
func (r *mensajeRepositoryImpl) Conversacion(ctx context.Context, usuarioA, usuarioB int64, anuncioID *int64, pagina, limite int) ([]model.Mensaje, int64, error) {
	if pagina < 1 {
		pagina = 1
	}
	if limite < 1 {
		limite = 20
	}

	base := r.db.WithContext(ctx).Table("mensajes").
		Where("(remitente_id = ? AND destinatario_id = ?) OR (remitente_id = ? AND destinatario_id = ?)",
			usuarioA, usuarioB, usuarioB, usuarioA)
	base = aplicarAnuncio(base, anuncioID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, WrapDBError(err)
	}

	var mensajes []model.Mensaje
	err := base.Session(&gorm.Session{}).
		Select(r.columnasMensaje()+", CONCAT(ur.nombre, ' ', ur.apellido) AS remitente_nombre, CONCAT(ud.nombre, ' ', ud.apellido) AS destinatario_nombre").
		Joins("LEFT JOIN usuarios ur ON ur.id = mensajes.remitente_id").
		Joins("LEFT JOIN usuarios ud ON ud.id = mensajes.destinatario_id").
		Order("mensajes.fecha_envio DESC, mensajes.id DESC").
		Limit(limite).
		Offset((pagina - 1) * limite).
		Find(&mensajes).Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}

	// reordenar la página para presentación (ascendente por fecha, luego id)
	sort.Slice(mensajes, func(i, j int) bool {
		if mensajes[i].FechaEnvio.Equal(mensajes[j].FechaEnvio) {
			return mensajes[i].ID < mensajes[j].ID
		}
		return mensajes[i].FechaEnvio.Before(mensajes[j].FechaEnvio)
	})

	return mensajes, total, nil
}

// MarcarEntregados transición de cortesía ligada a quien consulta: solo los
// mensajes cuyo destinatario es el consultante pasan de enviado a entregado.
// El remitente que relee su propia conversación no avanza ningún estado.
func (r *mensajeRepositoryImpl) MarcarEntregados(ctx context.Context, consultante, contraparte int64, anuncioID *int64) error {
	if !r.caps.TieneEstado {
		// el esquema antiguo no distingue entregado; no hay nada que avanzar
		return nil
	}

	tx := r.db.WithContext(ctx).Model(&model.Mensaje{}).
		Where("destinatario_id = ? AND remitente_id = ? AND estado = ?", consultante, contraparte, model.EstadoEnviado)
	tx = aplicarAnuncio(tx, anuncioID)

	if err := tx.Update("estado", model.EstadoEntregado).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// MarcarLeidos avanza en bloque enviado->visto para el par+contexto.
// Idempotente: una segunda llamada no afecta filas adicionales.
func (r *mensajeRepositoryImpl) MarcarLeidos(ctx context.Context, remitenteID, destinatarioID int64, anuncioID *int64) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Mensaje{}).
		Where("remitente_id = ? AND destinatario_id = ?", remitenteID, destinatarioID)
	tx = aplicarAnuncio(tx, anuncioID)

	var updates map[string]interface{}
	if r.caps.TieneEstado {
		tx = tx.Where("estado = ?", model.EstadoEnviado)
		updates = map[string]interface{}{"estado": model.EstadoVisto, "leido": true}
	} else {
		tx = tx.Where("leido = 0")
		updates = map[string]interface{}{"leido": true}
	}

	res := tx.Updates(updates)
	if res.Error != nil {
		return 0, WrapDBError(res.Error)
	}

	r.invalidarNoLeidos(ctx, destinatarioID)
	return res.RowsAffected, nil
}

// MarcarConversacionVista avanza a visto todo lo pendiente (enviado y
// entregado) que el destinatario recibió de ese remitente en ese contexto.
func (r *mensajeRepositoryImpl) MarcarConversacionVista(ctx context.Context, destinatarioID, remitenteID int64, anuncioID *int64) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Mensaje{}).
		Where("remitente_id = ? AND destinatario_id = ?", remitenteID, destinatarioID)
	tx = aplicarAnuncio(tx, anuncioID)

	var updates map[string]interface{}
	if r.caps.TieneEstado {
		tx = tx.Where("estado <> ?", model.EstadoVisto)
		updates = map[string]interface{}{"estado": model.EstadoVisto, "leido": true}
	} else {
		tx = tx.Where("leido = 0")
		updates = map[string]interface{}{"leido": true}
	}

	res := tx.Updates(updates)
	if res.Error != nil {
		return 0, WrapDBError(res.Error)
	}

	r.invalidarNoLeidos(ctx, destinatarioID)
	return res.RowsAffected, nil
}

// MarcarVisto avanza exactamente un mensaje a visto. La condición de WHERE
// garantiza que solo aplica si el consultante es el destinatario y el estado
// aún permite avanzar; en caso contrario no afecta filas y devuelve false
// (resultado no-aplicado, nunca un error).
func (r *mensajeRepositoryImpl) MarcarVisto(ctx context.Context, mensajeID, destinatarioID int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.Mensaje{}).
		Where("id = ? AND destinatario_id = ?", mensajeID, destinatarioID)

	var updates map[string]interface{}
	if r.caps.TieneEstado {
		tx = tx.Where("estado <> ?", model.EstadoVisto)
		updates = map[string]interface{}{"estado": model.EstadoVisto, "leido": true}
	} else {
		tx = tx.Where("leido = 0")
		updates = map[string]interface{}{"leido": true}
	}

	res := tx.Updates(updates)
	if res.Error != nil {
		return false, WrapDBError(res.Error)
	}

	if res.RowsAffected > 0 {
		r.invalidarNoLeidos(ctx, destinatarioID)
		return true, nil
	}
	return false, nil
}

// TotalNoLeidos cuenta los mensajes dirigidos al usuario aún no vistos.
// Cache-aside sobre Redis con TTL corto; la base de datos es la autoridad y
// cualquier fallo de Redis degrada a consulta directa.
func (r *mensajeRepositoryImpl) TotalNoLeidos(ctx context.Context, usuarioID int64) (int64, error) {
	cacheKey := rediskey.NoLeidosKey(usuarioID)

	if r.redisClient != nil {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if total, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return total, nil
			}
		} else if err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&model.Mensaje{}).
		Where("destinatario_id = ?", usuarioID).
		Where(r.condNoVisto()).
		Count(&total).Error
	if err != nil {
		return 0, WrapDBError(err)
	}

	if r.redisClient != nil {
		async.RunSafe(ctx, func(runCtx context.Context) {
			if err := r.redisClient.Set(runCtx, cacheKey, total, rediskey.NoLeidosTTL).Err(); err != nil {
				LogRedisError(runCtx, err)
			}
		}, 0)
	}

	return total, nil
}

// invalidarNoLeidos borra el contador cacheado del usuario en segundo plano.
func (r *mensajeRepositoryImpl) invalidarNoLeidos(ctx context.Context, usuarioID int64) {
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.NoLeidosKey(usuarioID)
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Del(runCtx, cacheKey).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// ListaChats arma la lista de chats del usuario: una fila por par
// (contraparte, anuncio) con el mensaje más reciente del par. El desempate con
// fechas idénticas es por id más alto. El conteo de no leídos se resuelve en
// una segunda consulta agrupada y se fusiona en memoria.
func (r *mensajeRepositoryImpl) ListaChats(ctx context.Context, usuarioID int64) ([]ChatResumen, error) {
	consulta := fmt.Sprintf(`
		SELECT %s,
		       CONCAT(ur.nombre, ' ', ur.apellido) AS remitente_nombre,
		       CONCAT(ud.nombre, ' ', ud.apellido) AS destinatario_nombre
		FROM mensajes
		LEFT JOIN usuarios ur ON ur.id = mensajes.remitente_id
		LEFT JOIN usuarios ud ON ud.id = mensajes.destinatario_id
		WHERE (mensajes.remitente_id = ? OR mensajes.destinatario_id = ?)
		  AND NOT EXISTS (
		      SELECT 1 FROM mensajes m2
		      WHERE (m2.remitente_id = ? OR m2.destinatario_id = ?)
		        AND (CASE WHEN m2.remitente_id = ? THEN m2.destinatario_id ELSE m2.remitente_id END) =
		            (CASE WHEN mensajes.remitente_id = ? THEN mensajes.destinatario_id ELSE mensajes.remitente_id END)
		        AND ((m2.anuncio_id IS NULL AND mensajes.anuncio_id IS NULL) OR m2.anuncio_id = mensajes.anuncio_id)
		        AND (m2.fecha_envio > mensajes.fecha_envio
		             OR (m2.fecha_envio = mensajes.fecha_envio AND m2.id > mensajes.id))
		  )
		ORDER BY mensajes.fecha_envio DESC, mensajes.id DESC`, r.columnasMensaje())

	var ultimos []model.Mensaje
	err := r.db.WithContext(ctx).Raw(consulta,
		usuarioID, usuarioID, usuarioID, usuarioID, usuarioID, usuarioID,
	).Scan(&ultimos).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	noLeidos, err := r.noLeidosPorPar(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	chats := make([]ChatResumen, 0, len(ultimos))
	for _, m := range ultimos {
		resumen := ChatResumen{Mensaje: m, AnuncioID: m.AnuncioID}
		if m.RemitenteID == usuarioID {
			resumen.ContraparteID = m.DestinatarioID
			resumen.ContraparteNombre = m.DestinatarioNombre
		} else {
			resumen.ContraparteID = m.RemitenteID
			resumen.ContraparteNombre = m.RemitenteNombre
		}
		resumen.NoLeidos = noLeidos[clavePar(resumen.ContraparteID, m.AnuncioID)]
		chats = append(chats, resumen)
	}
	return chats, nil
}

// noLeidosPorPar conteo de no vistos agrupado por (remitente, anuncio).
func (r *mensajeRepositoryImpl) noLeidosPorPar(ctx context.Context, usuarioID int64) (map[string]int64, error) {
	type fila struct {
		Contraparte int64  `gorm:"column:contraparte"`
		AnuncioID   *int64 `gorm:"column:anuncio_id"`
		Total       int64  `gorm:"column:total"`
	}

	var filas []fila
	err := r.db.WithContext(ctx).Table("mensajes").
		Select("remitente_id AS contraparte, anuncio_id, COUNT(*) AS total").
		Where("destinatario_id = ?", usuarioID).
		Where(r.condNoVisto()).
		Group("remitente_id, anuncio_id").
		Scan(&filas).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	resultado := make(map[string]int64, len(filas))
	for _, f := range filas {
		resultado[clavePar(f.Contraparte, f.AnuncioID)] = f.Total
	}
	return resultado, nil
}

// clavePar clave de fusión (contraparte, anuncio); NULL y 0 no se confunden.
func clavePar(contraparte int64, anuncioID *int64) string {
	if anuncioID == nil {
		return fmt.Sprintf("%d:general", contraparte)
	}
	return fmt.Sprintf("%d:%d", contraparte, *anuncioID)
}

// UltimosEntrePar últimos mensajes entre dos usuarios, más reciente primero.
// Alimenta la instantánea de contexto de los reportes.
func (r *mensajeRepositoryImpl) UltimosEntrePar(ctx context.Context, usuarioA, usuarioB int64, limite int) ([]model.Mensaje, error) {
	if limite < 1 {
		limite = 5
	}
	var mensajes []model.Mensaje
	err := r.db.WithContext(ctx).Table("mensajes").
		Select(r.columnasMensaje()).
		Where("(remitente_id = ? AND destinatario_id = ?) OR (remitente_id = ? AND destinatario_id = ?)",
			usuarioA, usuarioB, usuarioB, usuarioA).
		Order("fecha_envio DESC, id DESC").
		Limit(limite).
		Find(&mensajes).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return mensajes, nil
}

// EstadosEntre estados de los mensajes que usuario envió a contraparte, en
// orden de id. El cliente los usa para pintar los checks de entrega.
func (r *mensajeRepositoryImpl) EstadosEntre(ctx context.Context, usuarioID, otroUsuarioID int64) ([]EstadoMensaje, error) {
	var mensajes []model.Mensaje
	err := r.db.WithContext(ctx).Table("mensajes").
		Select(r.columnasMensaje()).
		Where("remitente_id = ? AND destinatario_id = ?", usuarioID, otroUsuarioID).
		Order("id ASC").
		Find(&mensajes).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	estados := make([]EstadoMensaje, 0, len(mensajes))
	for _, m := range mensajes {
		estados = append(estados, EstadoMensaje{ID: m.ID, Estado: r.caps.EstadoEfectivo(m)})
	}
	return estados, nil
}
