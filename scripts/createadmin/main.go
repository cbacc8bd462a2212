package main

import (
	"flag"
	"log"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/config"
	"whitelight-store/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

// 初始化第一个管理员账号：
//
//	go run ./scripts/createadmin -username admin -email admin@example.com -password secret
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (required)")
	role := flag.String("role", "admin", "admin or super_admin")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}
	if *role != "admin" && *role != "super_admin" {
		log.Fatalf("invalid role: %s", *role)
	}

	c, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.InitMySQL(c.Mysql)
	if err != nil {
		log.Fatalf("Failed to init mysql: %v", err)
	}
	db.AutoMigrate(&model.Admin{})

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := model.Admin{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         *role,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Admin created: id=%d username=%s role=%s", admin.ID, admin.Username, admin.Role)
}
