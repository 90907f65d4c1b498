// Command stockctl administra el ledger de inventario: migraciones, conciliación y datos iniciales.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos de salida: 1 error operativo, 2 descuadre detectado por la conciliación.
const (
	exitError     = 1
	exitIntegrity = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stockctl:", err)
		if errors.Is(err, domain.ErrIntegrity) {
			os.Exit(exitIntegrity)
		}
		os.Exit(exitError)
	}
}
