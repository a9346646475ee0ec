package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"veever-server/models"
	"veever-server/services"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

var wizardContext = context.Background()

const wizardDraftTTL = 24 * time.Hour

func wizardKey(userID uint) string {
	return fmt.Sprintf("wizard:%d", userID)
}

func loadWizardDraft(userID uint) (*services.WizardDraft, error) {
	raw, err := storage.Redis.Get(wizardContext, wizardKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var draft services.WizardDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func saveWizardDraft(userID uint, draft *services.WizardDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return storage.Redis.Set(wizardContext, wizardKey(userID), string(raw), wizardDraftTTL).Err()
}

func clearWizardDraft(userID uint) {
	storage.Redis.Del(wizardContext, wizardKey(userID))
}

// wizardState is what every wizard endpoint returns: the draft plus the
// remaining cards when the current step is a swipe step.
func wizardState(draft *services.WizardDraft) iris.Map {
	state := iris.Map{"draft": draft, "step": draft.Step}
	if deck := draft.CurrentDeck(); deck != nil {
		cursor := draft.CuisineIndex
		if draft.Step == services.StepActivity {
			cursor = draft.ActivityIndex
		}
		if cursor > len(deck) {
			cursor = len(deck)
		}
		state["cards"] = deck[cursor:]
	}
	return state
}

type StartWizardInput struct {
	EditID *uint `json:"editID"`
}

// POST /api/wizard/start — begins a new draft, or seeds one from an existing
// pending record in edit mode.
func StartWizard(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input StartWizardInput
	if err := ctx.ReadJSON(&input); err != nil && ctx.GetContentLength() > 0 {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var draft *services.WizardDraft
	if input.EditID != nil {
		service := services.NewExperienceService()
		experience, err := service.GetByID(*input.EditID)
		if err != nil {
			handleExperienceError(err, ctx)
			return
		}
		if experience.UserID != userID {
			utils.CreateForbidden(ctx)
			return
		}
		if experience.Status != models.StatusPending {
			utils.CreateError(
				iris.StatusConflict,
				"Conflict", services.ErrInvalidState.Error(), ctx)
			return
		}
		draft = services.SeedDraftFromExperience(experience)
	} else {
		draft = services.NewWizardDraft()
	}

	if err := saveWizardDraft(userID, draft); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(wizardState(draft))
}

// GET /api/wizard — current draft and step.
func GetWizard(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	draft, err := loadWizardDraft(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusNotFound,
			"Not Found", "No wizard in progress.", ctx)
		return
	}
	ctx.JSON(wizardState(draft))
}

type WizardAnswerInput struct {
	ItineraryType      string                         `json:"itineraryType"`
	Accommodation      *models.AccommodationSection   `json:"accommodation"`
	DateAndConstraints *models.DateConstraintsSection `json:"dateAndConstraints"`
	Personalization    *models.PersonalizationSection `json:"personalization"`
	Restaurant         *models.RestaurantSection      `json:"restaurant"`
	Activity           *models.ActivitySection        `json:"activity"`
}

// POST /api/wizard/answer — records the current step's answers and advances.
// Swipe steps advance through /swipe instead.
func AnswerWizardStep(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	draft, err := loadWizardDraft(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusNotFound,
			"Not Found", "No wizard in progress.", ctx)
		return
	}

	var input WizardAnswerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.ItineraryType != "" {
		if err := draft.SetItineraryType(input.ItineraryType); err != nil {
			utils.CreateError(
				iris.StatusUnprocessableEntity,
				"Validation error", err.Error(), ctx)
			return
		}
	}
	if input.Accommodation != nil {
		draft.Accommodation = *input.Accommodation
	}
	if input.Restaurant != nil {
		// structured restaurant details (ambiance, budget) alongside swipes
		draft.Restaurant.Ambiance = input.Restaurant.Ambiance
		draft.Restaurant.Budget = input.Restaurant.Budget
		if len(input.Restaurant.Cuisines) > 0 {
			draft.Restaurant.Cuisines = input.Restaurant.Cuisines
		}
	}
	if input.Activity != nil {
		draft.Activity.Intensity = input.Activity.Intensity
		draft.Activity.Budget = input.Activity.Budget
		if len(input.Activity.Types) > 0 {
			draft.Activity.Types = input.Activity.Types
		}
	}
	if input.DateAndConstraints != nil {
		draft.DateAndConstraints = *input.DateAndConstraints
	}
	if input.Personalization != nil {
		draft.Personalization = *input.Personalization
	}

	if draft.Step != services.StepPersonalization {
		if err := draft.NextStep(); err != nil {
			utils.CreateError(
				iris.StatusUnprocessableEntity,
				"Validation error", err.Error(), ctx)
			return
		}
	} else if err := draft.ValidateStep(draft.Step); err != nil {
		utils.CreateError(
			iris.StatusUnprocessableEntity,
			"Validation error", err.Error(), ctx)
		return
	}

	if err := saveWizardDraft(userID, draft); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(wizardState(draft))
}

type WizardSwipeInput struct {
	OptionID string `json:"optionID" validate:"required"`
	Liked    *bool  `json:"liked" validate:"required"`
}

// POST /api/wizard/swipe — like/dislike the current card; exhausting the
// deck auto-advances to the next step.
func SwipeWizardOption(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	draft, err := loadWizardDraft(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusNotFound,
			"Not Found", "No wizard in progress.", ctx)
		return
	}

	var input WizardSwipeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	advanced, swipeErr := draft.Swipe(input.OptionID, *input.Liked)
	if swipeErr != nil {
		utils.CreateError(
			iris.StatusUnprocessableEntity,
			"Validation error", swipeErr.Error(), ctx)
		return
	}

	if err := saveWizardDraft(userID, draft); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	state := wizardState(draft)
	state["advanced"] = advanced
	ctx.JSON(state)
}

// POST /api/wizard/back — moves back one step, skipping the accommodation
// step symmetrically for hotel-less drafts.
func BackWizardStep(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	draft, err := loadWizardDraft(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusNotFound,
			"Not Found", "No wizard in progress.", ctx)
		return
	}

	draft.PrevStep()

	if err := saveWizardDraft(userID, draft); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(wizardState(draft))
}

// POST /api/wizard/submit — persists the draft as a new pending record, or
// applies it to the record being edited.
func SubmitWizard(ctx iris.Context) {
	userIDValue := ctx.Values().Get("userID")
	if userIDValue == nil {
		// surfaced before any store call is made
		utils.CreateAuthRequired(ctx)
		return
	}
	userID := userIDValue.(uint)

	draft, err := loadWizardDraft(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusNotFound,
			"Not Found", "No wizard in progress.", ctx)
		return
	}

	// Every gated step must hold at submission
	for step := services.StepItineraryType; step <= services.StepPersonalization; step++ {
		if err := draft.ValidateStep(step); err != nil {
			utils.CreateError(
				iris.StatusUnprocessableEntity,
				"Validation error", err.Error(), ctx)
			return
		}
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateAuthRequired(ctx)
		return
	}

	service := services.NewExperienceService()

	var experience *models.CustomExperience
	if draft.EditID != nil {
		patch := &services.ExperiencePatch{
			UserID:             userID,
			ItineraryType:      draft.ItineraryType,
			Restaurant:         &draft.Restaurant,
			Activity:           &draft.Activity,
			DateAndConstraints: &draft.DateAndConstraints,
			Personalization:    &draft.Personalization,
			Preferences:        draft.Preferences,
		}
		if draft.ItineraryType == models.ItineraryTypeFull {
			patch.Accommodation = &draft.Accommodation
		}
		experience, err = service.Update(*draft.EditID, patch)
	} else {
		experienceDraft := &services.ExperienceDraft{
			UserID:             userID,
			UserEmail:          user.Email,
			ItineraryType:      draft.ItineraryType,
			Restaurant:         draft.Restaurant,
			Activity:           draft.Activity,
			DateAndConstraints: draft.DateAndConstraints,
			Personalization:    draft.Personalization,
			Preferences:        draft.Preferences,
		}
		if draft.ItineraryType == models.ItineraryTypeFull {
			experienceDraft.Accommodation = &draft.Accommodation
		}
		experience, err = service.Create(experienceDraft)
	}
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	clearWizardDraft(userID)
	ctx.JSON(experience)
}
