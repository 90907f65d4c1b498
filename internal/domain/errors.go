package domain

import "errors"

// Kind clasifica los errores de dominio para que las capas externas (HTTP, CLI)
// decidan la respuesta sin conocer cada error concreto.
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindAuthorization Kind = "AUTHORIZATION_ERROR"
	KindIntegrity     Kind = "INTEGRITY_ERROR"
	KindInternal      Kind = "INTERNAL"
)

// Error es un error de dominio con tipo y código estable (se expone tal cual al cliente).
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errores de dominio (sin dependencias externas).
// Se comparan con errors.Is; el contexto se añade con fmt.Errorf("%w: ...").
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "recurso no encontrado"}
	ErrInventoryNotFound = &Error{Kind: KindNotFound, Code: "INVENTORY_NOT_FOUND", Message: "registro de inventario no encontrado"}
	ErrSaleNotFound      = &Error{Kind: KindNotFound, Code: "SALE_NOT_FOUND", Message: "venta no encontrada"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "usuario no encontrado"}

	ErrInvalidInput = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "entrada inválida"}

	ErrInsufficientStock = &Error{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	ErrSameStore         = &Error{Kind: KindConflict, Code: "SAME_STORE", Message: "la tienda origen y destino son la misma"}
	ErrInvalidOperation  = &Error{Kind: KindConflict, Code: "INVALID_OPERATION", Message: "la operación dejaría el stock en negativo"}
	ErrConcurrentUpdate  = &Error{Kind: KindConflict, Code: "CONCURRENT_UPDATE", Message: "el registro cambió durante la operación; reenviar"}
	ErrAlreadyVoided     = &Error{Kind: KindConflict, Code: "ALREADY_VOIDED", Message: "la venta ya fue anulada"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "transición de estado inválida"}
	ErrDuplicate         = &Error{Kind: KindConflict, Code: "DUPLICATE", Message: "recurso duplicado"}

	ErrUnauthorized  = &Error{Kind: KindAuthorization, Code: "UNAUTHORIZED", Message: "no autorizado"}
	ErrForbidden     = &Error{Kind: KindAuthorization, Code: "AUTHORIZATION_ERROR", Message: "acceso denegado"}
	ErrWindowExpired = &Error{Kind: KindAuthorization, Code: "WINDOW_EXPIRED", Message: "la ventana para anular la venta expiró"}
	ErrInvalidToken  = &Error{Kind: KindAuthorization, Code: "INVALID_TOKEN", Message: "token inválido o ya utilizado"}

	ErrIntegrity = &Error{Kind: KindIntegrity, Code: "INTEGRITY_ERROR", Message: "el ledger no cuadra con el stock actual"}
)

// KindOf devuelve el tipo del primer *Error en la cadena; KindInternal si no hay ninguno.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf devuelve el código del primer *Error en la cadena; "INTERNAL" si no hay ninguno.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return string(KindInternal)
}
