// seed_locations genera el script SQL para poblar sucursales y bodegas
// a partir del catálogo XML de ubicaciones.
//
// Uso: go run ./cmd/seed_locations [ruta/ubicaciones.xml]
// Por defecto busca ubicaciones.xml en el directorio actual.
// Escribe: pkg/migrate/seeds/locations.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/catalog"
)

func main() {
	xmlPath := "ubicaciones.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	locs, err := catalog.Load(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outDir := filepath.Join(moduleRoot, "pkg", "migrate", "seeds")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	outPath := filepath.Join(outDir, "locations.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := catalog.WriteSeedSQL(out, locs); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	var branches int
	for _, l := range locs {
		if _, ok := l.Location.(entity.Branch); ok {
			branches++
		}
	}
	fmt.Printf("Generado %s: %d sucursales, %d bodegas\n", outPath, branches, len(locs)-branches)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
