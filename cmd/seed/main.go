package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/forkful/forkful-backend/config"
	"github.com/forkful/forkful-backend/internal/database"
	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/service"
)

type seedUser struct {
	name     string
	email    string
	password string
}

type seedRecipe struct {
	author int // index into seed users
	recipe models.Recipe
}

var seedUsers = []seedUser{
	{"Alice Moreau", "alice@example.com", "password123"},
	{"Ben Okafor", "ben@example.com", "password123"},
	{"Carla Reyes", "carla@example.com", "password123"},
}

var seedRecipes = []seedRecipe{
	{
		author: 0,
		recipe: models.Recipe{
			Title:       "Classic Spaghetti Carbonara",
			Description: "A traditional Roman pasta dish with eggs, pecorino and guanciale.",
			Ingredients: models.IngredientList{
				{Name: "spaghetti", Quantity: "400", Unit: "g"},
				{Name: "guanciale", Quantity: "150", Unit: "g"},
				{Name: "eggs", Quantity: "4", Unit: "pieces"},
				{Name: "pecorino romano", Quantity: "100", Unit: "g"},
			},
			Instructions: models.InstructionList{
				{Step: 1, Text: "Boil the spaghetti in salted water until al dente."},
				{Step: 2, Text: "Render the guanciale in a cold pan over medium heat."},
				{Step: 3, Text: "Whisk eggs with grated pecorino and plenty of black pepper."},
				{Step: 4, Text: "Toss pasta with guanciale off the heat, then fold in the egg mixture."},
			},
			PrepTime:   10,
			CookTime:   20,
			Servings:   4,
			Difficulty: "Medium",
			Cuisine:    "Italian",
			Category:   "Dinner",
			Tags:       models.JSONBStringArray{"pasta", "classic"},
			IsPublic:   true,
		},
	},
	{
		author: 1,
		recipe: models.Recipe{
			Title:       "Green Smoothie Bowl",
			Description: "A quick vegan breakfast bowl with spinach, banana and seasonal fruit.",
			Ingredients: models.IngredientList{
				{Name: "spinach", Quantity: "60", Unit: "g"},
				{Name: "banana", Quantity: "2", Unit: "pieces"},
				{Name: "almond milk", Quantity: "200", Unit: "ml"},
			},
			Instructions: models.InstructionList{
				{Step: 1, Text: "Blend spinach, banana and almond milk until smooth."},
				{Step: 2, Text: "Pour into a bowl and top with fruit and seeds."},
			},
			PrepTime:   5,
			CookTime:   1,
			Servings:   2,
			Difficulty: "Easy",
			Cuisine:    "American",
			Category:   "Breakfast",
			Tags:       models.JSONBStringArray{"smoothie", "quick"},
			Dietary:    models.JSONBStringArray{"vegan", "gluten-free"},
			IsPublic:   true,
		},
	},
	{
		author: 2,
		recipe: models.Recipe{
			Title:       "Chicken Tikka Masala",
			Description: "Marinated chicken simmered in a spiced tomato cream sauce.",
			Ingredients: models.IngredientList{
				{Name: "chicken thighs", Quantity: "600", Unit: "g"},
				{Name: "yogurt", Quantity: "200", Unit: "ml"},
				{Name: "tomato puree", Quantity: "400", Unit: "g"},
				{Name: "heavy cream", Quantity: "150", Unit: "ml"},
				{Name: "garam masala", Quantity: "2", Unit: "tbsp"},
			},
			Instructions: models.InstructionList{
				{Step: 1, Text: "Marinate the chicken in yogurt and spices for at least an hour."},
				{Step: 2, Text: "Char the chicken under a hot broiler."},
				{Step: 3, Text: "Simmer the sauce, then fold in the chicken and cream."},
			},
			PrepTime:   20,
			CookTime:   40,
			Servings:   4,
			Difficulty: "Medium",
			Cuisine:    "Indian",
			Category:   "Dinner",
			Tags:       models.JSONBStringArray{"curry", "spicy"},
			IsPublic:   true,
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	zapLogger := zap.NewNop()
	ctx := context.Background()

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, service.NoopNotifier{}, zapLogger)
	ratingService := service.NewRatingService(db, service.NoopNotifier{}, zapLogger)

	users := make([]*models.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		user, _, err := authService.Register(ctx, su.name, su.email, su.password)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", su.email, err)
		}
		users = append(users, user)
		fmt.Printf("created user %s\n", user.Email)
	}

	for _, sr := range seedRecipes {
		recipe := sr.recipe
		recipe.AuthorID = &users[sr.author].ID

		created, err := recipeService.CreateRecipe(ctx, &recipe)
		if err != nil {
			log.Fatalf("failed to seed recipe %q: %v", recipe.Title, err)
		}
		if _, err := recipeService.PublishRecipe(ctx, created.ID, users[sr.author].ID); err != nil {
			log.Fatalf("failed to publish recipe %q: %v", recipe.Title, err)
		}

		// A couple of ratings so the catalog shelves have data.
		for i, u := range users {
			if i == sr.author {
				continue
			}
			score := 3 + i%3
			if _, err := ratingService.SubmitRating(ctx, created.ID, u.ID, score, ""); err != nil {
				log.Fatalf("failed to seed rating on %q: %v", recipe.Title, err)
			}
		}

		fmt.Printf("created recipe %q\n", recipe.Title)
	}

	fmt.Println("seed complete")
}
