package main

import (
	"log"
	"os"

	"myinco-admin-be/internal/model"
	"myinco-admin-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type seedProduct struct {
	Name               string
	RepresentativeCode string
	Tags               []string
}

type seedCategory struct {
	Main     string
	Sub      string
	Products []seedProduct
}

// Catalog used by local environments and the admin UI demo.
var catalog = []seedCategory{
	{
		Main: "Bioinformatics",
		Sub:  "Variant Database",
		Products: []seedProduct{
			{Name: "HGMD Online", RepresentativeCode: "ISG-BBHO", Tags: []string{"database", "variant"}},
			{Name: "HGMD Professional", RepresentativeCode: "ISG-BBHP", Tags: []string{"database", "variant"}},
		},
	},
	{
		Main: "Bioinformatics",
		Sub:  "Pathway Analysis",
		Products: []seedProduct{
			{Name: "IPA 100 datasets with Analysis Match", RepresentativeCode: "ISG-IGMD", Tags: []string{"software", "pathway"}},
		},
	},
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Product Catalog...")

	for _, c := range catalog {
		mainId, err := ensureCategory(db, c.Main, model.CategoryKindMain, nil)
		if err != nil {
			log.Printf("Error creating category '%s': %v", c.Main, err)
			continue
		}
		subId, err := ensureCategory(db, c.Sub, model.CategoryKindSub, &mainId)
		if err != nil {
			log.Printf("Error creating category '%s': %v", c.Sub, err)
			continue
		}

		for _, p := range c.Products {
			var existing model.Product
			if err := db.Where("representative_code = ?", p.RepresentativeCode).First(&existing).Error; err == nil {
				log.Printf("Product '%s' already exists, skipping...", p.RepresentativeCode)
				continue
			}

			product := model.Product{
				Name:               p.Name,
				RepresentativeCode: p.RepresentativeCode,
				CategoryId:         subId,
				Tags:               datatypes.JSONSlice[string](p.Tags),
				IsActive:           true,
			}
			if err := db.Create(&product).Error; err != nil {
				log.Printf("Error creating product '%s': %v", p.Name, err)
			} else {
				log.Printf("Created product: %s (%s)", p.Name, p.RepresentativeCode)
			}
		}
	}

	log.Println("Catalog seeding completed!")
}

func ensureCategory(db *gorm.DB, name, kind string, parentId *uuid.UUID) (uuid.UUID, error) {
	var existing model.ProductCategory
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		return existing.Id, nil
	}

	category := model.ProductCategory{Name: name, Kind: kind, ParentId: parentId}
	if err := db.Create(&category).Error; err != nil {
		return uuid.Nil, err
	}
	log.Printf("Created %s category: %s", kind, name)
	return category.Id, nil
}
