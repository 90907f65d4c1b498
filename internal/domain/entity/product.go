package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductKind discrimina la variante de producto.
type ProductKind string

const (
	KindTire    ProductKind = "TIRE"
	KindBale    ProductKind = "BALE"
	KindGeneric ProductKind = "GENERIC"
)

// ProductVariant es la variante resuelta de un producto; cada implementación lleva solo sus campos.
type ProductVariant interface {
	Kind() ProductKind
	isVariant()
}

// TireSpec atributos de una llanta (ej. 205/55 R16 91V).
type TireSpec struct {
	Width       int
	AspectRatio int
	RimDiameter int
	LoadIndex   int
	SpeedRating string
}

func (TireSpec) Kind() ProductKind { return KindTire }
func (TireSpec) isVariant()        {}

// BaleSpec atributos de una paca (ropa/material por peso).
type BaleSpec struct {
	Grade    string
	WeightKg decimal.Decimal
	Origin   string
}

func (BaleSpec) Kind() ProductKind { return KindBale }
func (BaleSpec) isVariant()        {}

// GenericSpec producto sin atributos específicos.
type GenericSpec struct{}

func (GenericSpec) Kind() ProductKind { return KindGeneric }
func (GenericSpec) isVariant()        {}

// Product representa un producto del catálogo (solo lectura para el núcleo de inventario).
type Product struct {
	ID        string
	SKU       string
	Name      string
	Brand     string
	BasePrice decimal.Decimal
	Variant   ProductVariant
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Kind devuelve el tipo de la variante; GENERIC si no hay variante.
func (p *Product) Kind() ProductKind {
	if p.Variant == nil {
		return KindGeneric
	}
	return p.Variant.Kind()
}
