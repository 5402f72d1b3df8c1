package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Utilidad de soporte: genera el hash bcrypt de una contraseña para sembrar
// cuentas de prueba (administradores del panel, usuarios de QA) directamente
// en la tabla usuarios.
func main() {
	password := flag.String("password", "", "contraseña en claro a hashear")
	cost := flag.Int("cost", bcrypt.DefaultCost, "factor de costo de bcrypt")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "uso: gen_password -password <contraseña> [-cost N]")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fallo al generar el hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
