package validator

import (
	"context"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
)

// ErrorValidacion rechazo de contenido con código legible por máquina.
type ErrorValidacion struct {
	Codigo  string
	Mensaje string
}

func (e *ErrorValidacion) Error() string { return e.Mensaje }

// Umbrales de las heurísticas anti-spam.
const (
	umbralMayusculasMinLetras = 10   // letras mínimas para evaluar mayúsculas
	umbralMayusculasProporcion = 0.8 // proporción de mayúsculas que dispara el rechazo
	umbralRepeticion          = 11   // repeticiones consecutivas de un mismo carácter
	umbralSoloEmojis          = 5    // longitud recortada mínima para evaluar solo-emojis
)

// patronesProhibidos se evalúan sobre el texto YA escapado (por eso `<script`
// aparece como `&lt;script`). Cubren inyección de script, URIs peligrosas,
// acortadores de URL, frases de spam/phishing, formas de inyección SQL y
// palabras de contenido no permitido.
var patronesProhibidos = []*regexp.Regexp{
	// etiquetas script y URIs ejecutables
	regexp.MustCompile(`(?i)&lt;\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)on(click|load|error|mouse\w*)\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	// acortadores de URL conocidos
	regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl\.com|goo\.gl|t\.co|ow\.ly|is\.gd|cutt\.ly|rebrand\.ly)\b`),
	// frases típicas de spam/phishing
	regexp.MustCompile(`(?i)(gana\s+dinero\s+f[aá]cil|haz\s+clic\s+aqu[ií]|oferta\s+limitada|has\s+ganado\s+un\s+premio|loter[ií]a|transferencia\s+urgente|verifica\s+tu\s+cuenta|western\s+union)`),
	// formas de inyección SQL
	regexp.MustCompile(`(?i)(union\s+select|drop\s+table|insert\s+into|delete\s+from|or\s+1\s*=\s*1|;\s*--)`),
	// palabras de contenido no permitido
	regexp.MustCompile(`(?i)\b(venta\s+de\s+drogas|armas\s+de\s+fuego|documentos\s+falsos)\b`),
}

// palabrasProhibidas lista fija de groserías. La coincidencia es por
// subcadena sin distinguir mayúsculas: una grosería incrustada dentro de una
// palabra inocente da falso positivo. Es el comportamiento vigente del
// sistema, documentado; no "arreglarlo" en silencio.
var palabrasProhibidas = []string{
	"mierda",
	"puta",
	"puto",
	"pendejo",
	"pendeja",
	"cabron",
	"cabrón",
	"carajo",
	"imbecil",
	"imbécil",
	"idiota",
	"estupido",
	"estúpido",
	"cojudo",
	"huevon",
	"huevón",
	"maldito",
}

// patronEmoji bloques Unicode de emojis que se eliminan para la heurística de
// solo-emojis: pictogramas, transporte, símbolos misceláneos, suplementos,
// banderas, selectores de variación y el ZWJ de los emojis compuestos.
var patronEmoji = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}\x{1F1E6}-\x{1F1FF}\x{FE00}-\x{FE0F}\x{200D}]`)

// Validador rechaza o sanea el contenido de un mensaje antes de persistirlo.
// Es determinista: mismo texto, mismo veredicto y mismo escapado.
type Validador struct {
	auditor audit.Auditor
}

// NewValidador crea el validador de contenido con su auditor inyectado.
func NewValidador(auditor audit.Auditor) *Validador {
	if auditor == nil {
		auditor = audit.NopAuditor{}
	}
	return &Validador{auditor: auditor}
}

// Validar evalúa el texto y devuelve la forma escapada que debe persistirse.
// Orden de evaluación (fijado por contrato):
// vacío -> demasiado largo (longitud cruda) -> demasiado corto (recortado) ->
// escapar HTML -> patrones prohibidos -> groserías -> repetición excesiva ->
// exceso de mayúsculas -> solo emojis.
// Cada rechazo dispara un evento de auditoría con el actor cuando se conoce;
// fallar al auditar no es fatal.
func (v *Validador) Validar(ctx context.Context, texto string, actorID int64) (string, error) {
	recortado := strings.TrimSpace(texto)

	if len(recortado) < 1 {
		return "", v.rechazar(ctx, actorID, consts.ValContenidoVacio, "El mensaje no puede estar vacío")
	}
	if len(texto) > consts.ContenidoMaxLen {
		return "", v.rechazar(ctx, actorID, consts.ValContenidoLargo, "El mensaje supera los 2000 caracteres")
	}
	if utf8.RuneCountInString(recortado) < consts.ContenidoMinLen {
		return "", v.rechazar(ctx, actorID, consts.ValContenidoCorto, "El mensaje es demasiado corto")
	}

	escapado := html.EscapeString(recortado)

	for _, patron := range patronesProhibidos {
		if patron.MatchString(escapado) {
			return "", v.rechazar(ctx, actorID, consts.ValPatronProhibido, "El mensaje contiene contenido no permitido")
		}
	}

	minusculas := strings.ToLower(escapado)
	for _, palabra := range palabrasProhibidas {
		if strings.Contains(minusculas, palabra) {
			return "", v.rechazar(ctx, actorID, consts.ValLenguajeOfensivo, "El mensaje contiene lenguaje ofensivo")
		}
	}

	// la repetición se evalúa antes que las mayúsculas: una ráfaga de letra
	// mayúscula repetida se reporta como repetición, no como grito
	if repeticionExcesiva(escapado) {
		return "", v.rechazar(ctx, actorID, consts.ValRepeticionExcesiva, "El mensaje tiene demasiados caracteres repetidos")
	}

	if excesoMayusculas(escapado) {
		return "", v.rechazar(ctx, actorID, consts.ValExcesoMayusculas, "Evita escribir todo en mayúsculas")
	}

	if soloEmojis(recortado) {
		return "", v.rechazar(ctx, actorID, consts.ValSoloEmojis, "El mensaje no puede contener solo emojis")
	}

	return escapado, nil
}

// rechazar arma el error de validación y audita el intento.
func (v *Validador) rechazar(ctx context.Context, actorID int64, codigo, mensaje string) error {
	v.auditor.Registrar(ctx, audit.Evento{
		Accion:    "validacion_contenido",
		ActorID:   actorID,
		Resultado: audit.ResultadoRechazado,
		Detalle:   codigo,
	})
	return &ErrorValidacion{Codigo: codigo, Mensaje: mensaje}
}

// excesoMayusculas detecta gritos: más de 10 letras y más del 80% en mayúscula.
func excesoMayusculas(texto string) bool {
	letras, mayusculas := 0, 0
	for _, r := range texto {
		if unicode.IsLetter(r) {
			letras++
			if unicode.IsUpper(r) {
				mayusculas++
			}
		}
	}
	if letras <= umbralMayusculasMinLetras {
		return false
	}
	return float64(mayusculas)/float64(letras) > umbralMayusculasProporcion
}

// repeticionExcesiva detecta 11 o más repeticiones consecutivas del mismo carácter.
func repeticionExcesiva(texto string) bool {
	var anterior rune
	run := 0
	for _, r := range texto {
		if r == anterior {
			run++
			if run >= umbralRepeticion {
				return true
			}
		} else {
			anterior = r
			run = 1
		}
	}
	return false
}

// soloEmojis devuelve true si tras quitar los bloques de emoji y los espacios
// no queda ningún carácter, siempre que el texto recortado supere los 5
// caracteres (mensajes cortos de emojis sí se permiten).
func soloEmojis(recortado string) bool {
	if utf8.RuneCountInString(recortado) <= umbralSoloEmojis {
		return false
	}
	sinEmojis := patronEmoji.ReplaceAllString(recortado, "")
	sinEspacios := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, sinEmojis)
	return utf8.RuneCountInString(sinEspacios) == 0
}
