package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// Bootstrap tool: creates a back-office user with a role so the first
// bursar can log in.
func main() {
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "initial password")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	role := flag.String("role", "bursar", "role to grant (admin, bursar, cashier)")
	flag.Parse()

	if *email == "" || *password == "" || *firstName == "" || *lastName == "" {
		flag.Usage()
		os.Exit(2)
	}
	if len(*password) < 8 {
		fmt.Println("Password must be at least 8 characters")
		os.Exit(2)
	}

	config.Load()
	db := config.GetDB()
	defer db.Close()

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		os.Exit(1)
	}

	user := &models.User{
		Email:     *email,
		Password:  hashed,
		FirstName: *firstName,
		LastName:  *lastName,
	}
	if err := database.CreateUser(db, user); err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		os.Exit(1)
	}

	roleID, err := database.EnsureRole(db, *role)
	if err != nil {
		fmt.Printf("Error ensuring role: %v\n", err)
		os.Exit(1)
	}
	if err := database.AssignRole(db, user.ID, roleID); err != nil {
		fmt.Printf("Error assigning role: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created: %s %s (%s) with role %s\n",
		user.FirstName, user.LastName, user.Email, *role)
}
