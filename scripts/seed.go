package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"taller/auth"
	"taller/config"
	"taller/db"
	"taller/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath, cfg.Reports.FolioBase)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	log.Println("🌱 Starting database seeding...")

	if err := seedAreas(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed areas: %v", err)
	}
	if err := seedUsers(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedAreas(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	areas := []string{
		"Sistemas",
		"Almacén",
		"Dirección",
		"Recursos Humanos",
		"Producción",
	}
	for _, name := range areas {
		area := &models.Area{
			AreaID: uuid.NewString(),
			Area:   name,
		}
		if err := firestoreDB.CreateArea(ctx, area); err != nil {
			return err
		}
		log.Printf("  Area: %s", name)
	}
	return nil
}

func seedUsers(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	users := []struct {
		user     models.User
		password string
	}{
		{
			user: models.User{
				Email:    "admin@taller.mx",
				UserType: models.RoleAdministrador,
				UserName: "Administrador",
			},
			password: "admin12345",
		},
		{
			user: models.User{
				Email:             "carlos@taller.mx",
				UserType:          models.RoleTecnico,
				TechnicianName:    "Carlos Mendoza",
				TechnicianService: "Equipos de cómputo",
			},
			password: "tecnico12345",
		},
		{
			user: models.User{
				Email:    "laura@taller.mx",
				UserType: models.RoleUsuario,
				UserName: "Laura Ríos",
				Area:     "Sistemas",
			},
			password: "usuario12345",
		},
	}

	for _, seed := range users {
		seed.user.UserID = uuid.NewString()
		seed.user.LastLogin = time.Now()

		if err := firestoreDB.CreateUser(ctx, &seed.user); err != nil {
			return err
		}

		hash, err := auth.HashPassword(seed.password)
		if err != nil {
			return err
		}
		if err := firestoreDB.StorePasswordHash(ctx, seed.user.UserID, hash); err != nil {
			return err
		}
		log.Printf("  User: %s (%s)", seed.user.Email, seed.user.UserType)
	}
	return nil
}
