// token emite un JWT de operador firmado con JWT_SECRET, para entornos de desarrollo
// donde no hay servicio de autenticación.
//
// Uso: go run ./cmd/token -user u-1 -role bodeguero [-branch centro]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/pos-backoffice/pkg/config"
	"github.com/jhoicas/pos-backoffice/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "ID del operador")
	role := flag.String("role", jwt.RoleBodeguero, "rol: admin|bodeguero|vendedor")
	branch := flag.String("branch", "", "sucursal del operador")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "falta -user")
		os.Exit(1)
	}
	switch *role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", *role)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, jwt.Identity{UserID: *user, BranchID: *branch, Role: *role}, cfg.JWT.TTL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
