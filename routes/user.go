package routes

import (
	"encoding/json"
	"strings"

	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		SocialLogin: false}

	storage.DB.Create(&newUser)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(
			iris.StatusUnauthorized,
			"Credentials Error",
			"Invalid email or password.", ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(
			iris.StatusUnauthorized,
			"Credentials Error",
			"Please sign in with "+existingUser.SocialProvider+".", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(
			iris.StatusUnauthorized,
			"Credentials Error",
			"Invalid email or password.", ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp verifies a Google ID token against Google's JWKS and
// signs the user in, creating the account on first sight.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput GoogleLoginInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	jwks, jwksErr := keyfunc.Get("https://www.googleapis.com/oauth2/v3/certs", keyfunc.Options{})
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	token, tokenErr := jwt.Parse(userInput.IDToken, jwks.Keyfunc)
	if tokenErr != nil || !token.Valid {
		utils.CreateError(
			iris.StatusUnauthorized,
			"Credentials Error",
			"Invalid Google token.", ctx)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		utils.CreateInternalServerError(ctx)
		return
	}

	email, _ := claims["email"].(string)
	if email == "" {
		utils.CreateError(
			iris.StatusUnauthorized,
			"Credentials Error",
			"Google token has no email claim.", ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		firstName, _ := claims["given_name"].(string)
		lastName, _ := claims["family_name"].(string)
		picture, _ := claims["picture"].(string)
		user = models.User{
			FirstName:      firstName,
			LastName:       lastName,
			Email:          strings.ToLower(email),
			SocialLogin:    true,
			SocialProvider: "google",
			AvatarURL:      picture,
		}
		storage.DB.Create(&user)
	}

	returnUser(user, ctx)
}

// GetMe returns the authenticated user's profile.
func GetMe(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(user)
}

type UpdateMeInput struct {
	FirstName string `json:"firstName" validate:"omitempty,max=256"`
	LastName  string `json:"lastName" validate:"omitempty,max=256"`
	AvatarURL string `json:"avatarURL" validate:"omitempty,max=1024"`
}

func UpdateMe(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input UpdateMeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(user)
}

type PushTokenInput struct {
	Token               string `json:"token" validate:"required"`
	AllowsNotifications *bool  `json:"allowsNotifications"`
}

// RegisterPushToken stores a device push token on the profile.
func RegisterPushToken(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input PushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}
	exists := false
	for _, t := range tokens {
		if t == input.Token {
			exists = true
			break
		}
	}
	if !exists {
		tokens = append(tokens, input.Token)
	}
	raw, _ := json.Marshal(tokens)
	user.PushTokens = datatypes.JSON(raw)
	if input.AllowsNotifications != nil {
		user.AllowsNotifications = input.AllowsNotifications
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(user)
}

// ToggleSavedItinerary adds or removes an itinerary id from the favorites.
func ToggleSavedItinerary(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	itineraryID, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var itinerary models.Itinerary
	itineraryExists := storage.DB.Find(&itinerary, itineraryID)
	if itineraryExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var saved []uint
	if user.SavedItineraries != nil {
		json.Unmarshal(user.SavedItineraries, &saved)
	}

	removed := false
	for i, id := range saved {
		if id == itineraryID {
			saved = append(saved[:i], saved[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		saved = append(saved, itineraryID)
	}

	raw, _ := json.Marshal(saved)
	user.SavedItineraries = datatypes.JSON(raw)

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"savedItineraries": saved, "saved": !removed})
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
