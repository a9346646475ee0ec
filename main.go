package main

import (
	"log"
	"os"

	"veever-server/routes"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the Veever web client
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

		me := user.Party("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
		{
			me.Get("/", routes.GetMe)
			me.Patch("/", routes.UpdateMe)
			me.Post("/push-token", routes.RegisterPushToken)
		}
		user.Post("/itineraries/{id}/save", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ToggleSavedItinerary)
	}

	itineraries := app.Party("/api/itineraries")
	{
		itineraries.Get("/", routes.GetItineraries)
		itineraries.Get("/{id}", routes.GetItinerary)
	}

	partners := app.Party("/api/partners")
	{
		partners.Get("/", routes.GetPartners)
	}

	wizard := app.Party("/api/wizard", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		wizard.Post("/start", routes.StartWizard)
		wizard.Get("/", routes.GetWizard)
		wizard.Post("/answer", routes.AnswerWizardStep)
		wizard.Post("/swipe", routes.SwipeWizardOption)
		wizard.Post("/back", routes.BackWizardStep)
		wizard.Post("/submit", routes.SubmitWizard)
	}

	experiences := app.Party("/api/experiences", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		experiences.Get("/", routes.GetUserExperiences)
		experiences.Get("/{id}", routes.GetExperience)
		experiences.Patch("/{id}", routes.UpdateExperience)
		experiences.Post("/{id}/cancel", routes.CancelExperience)
		experiences.Get("/{id}/document", routes.ExportExperienceDocument)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id}", routes.AdminGetUser)
		admin.Patch("/users/{id}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)

		admin.Get("/experiences", routes.AdminListExperiences)
		admin.Get("/experiences/{id}", routes.AdminGetExperience)
		admin.Patch("/experiences/{id}/status", routes.AdminSetExperienceStatus)
		admin.Post("/experiences/{id}/itinerary", routes.AdminAttachItinerary)
		admin.Post("/experiences/{id}/notes", routes.AdminAddExperienceNote)
		admin.Get("/experiences/{id}/notes", routes.AdminListExperienceNotes)

		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)

		admin.Post("/export", routes.AdminCreateExport)
		admin.Get("/export/{id}", routes.AdminGetExport)
		admin.Get("/export/{id}/download", routes.AdminDownloadExport)

		admin.Get("/itineraries", routes.AdminListItineraries)
		admin.Post("/itineraries", routes.AdminCreateItinerary)
		admin.Patch("/itineraries/{id}", routes.AdminUpdateItinerary)
		admin.Delete("/itineraries/{id}", routes.AdminDeleteItinerary)

		admin.Get("/partners", routes.AdminListPartners)
		admin.Post("/partners", routes.AdminCreatePartner)
		admin.Patch("/partners/{id}", routes.AdminUpdatePartner)
		admin.Delete("/partners/{id}", routes.AdminDeletePartner)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Starting Veever server on port " + port)
	app.Listen(":" + port)
}
