package services

import (
	"fmt"
	"strings"
	"time"

	"veever-server/models"
)

// Display tables used by the exported document and the CSV rows. Unknown
// values fall through unchanged so a schema addition never breaks an export.
var budgetLabels = map[string]string{
	"economic": "Économique",
	"standard": "Standard",
	"premium":  "Premium",
	"luxury":   "Luxe",
}

var statusLabels = map[string]string{
	models.StatusPending:    "En attente",
	models.StatusProcessing: "En cours",
	models.StatusCompleted:  "Complétée",
	models.StatusCancelled:  "Annulée",
}

var itineraryTypeLabels = map[string]string{
	models.ItineraryTypeFull:    "Hôtel + Restaurant + Activité",
	models.ItineraryTypeNoHotel: "Restaurant + Activité",
}

var zoneLabels = map[string]string{
	"center":    "Centre-ville",
	"outskirts": "Périphérie",
}

func label(table map[string]string, value string) string {
	if value == "" {
		return ""
	}
	if mapped, ok := table[value]; ok {
		return mapped
	}
	return value
}

// FormatExportDate renders timestamps the way the exports expect them.
func FormatExportDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DeriveTags resolves the cuisine/activity tags of a record: the structured
// field wins, the swipe preference map is only the fallback. Fallback tags
// are the liked option labels in deck order.
func DeriveTags(structured []string, preferences map[string]bool, deck []SwipeOption) []string {
	if len(structured) > 0 {
		return structured
	}
	var tags []string
	for _, option := range deck {
		if preferences[option.ID] {
			tags = append(tags, option.Label)
		}
	}
	return tags
}

// BuildExperienceDocument renders the per-record export: a plain formatted
// document with the type, creation date, status and every populated section.
// The accommodation section only appears for hotel itineraries.
func BuildExperienceDocument(e *models.CustomExperience) string {
	var b strings.Builder

	b.WriteString("VEEVER — Expérience sur mesure\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&b, "Référence : #%d\n", e.ID)
	fmt.Fprintf(&b, "Type : %s\n", label(itineraryTypeLabels, e.ItineraryType))
	fmt.Fprintf(&b, "Créée le : %s\n", FormatExportDate(e.CreatedAt))
	fmt.Fprintf(&b, "Statut : %s\n", label(statusLabels, e.Status))

	if accommodation := e.DecodeAccommodation(); accommodation != nil {
		b.WriteString("\nHébergement\n-----------\n")
		if len(accommodation.Types) > 0 {
			fmt.Fprintf(&b, "Types : %s\n", strings.Join(accommodation.Types, ", "))
		}
		if accommodation.Budget != "" {
			fmt.Fprintf(&b, "Budget : %s\n", label(budgetLabels, accommodation.Budget))
		}
		if accommodation.Style != "" {
			fmt.Fprintf(&b, "Style : %s\n", accommodation.Style)
		}
	}

	restaurant := e.DecodeRestaurant()
	b.WriteString("\nRestaurant\n----------\n")
	cuisines := DeriveTags(restaurant.Cuisines, e.PreferenceMap(), CuisineOptions)
	if len(cuisines) > 0 {
		fmt.Fprintf(&b, "Cuisines : %s\n", strings.Join(cuisines, ", "))
	}
	if restaurant.Ambiance != "" {
		fmt.Fprintf(&b, "Ambiance : %s\n", restaurant.Ambiance)
	}
	if restaurant.Budget != "" {
		fmt.Fprintf(&b, "Budget : %s\n", label(budgetLabels, restaurant.Budget))
	}

	activity := e.DecodeActivity()
	b.WriteString("\nActivité\n--------\n")
	activities := DeriveTags(activity.Types, e.PreferenceMap(), ActivityOptions)
	if len(activities) > 0 {
		fmt.Fprintf(&b, "Activités : %s\n", strings.Join(activities, ", "))
	}
	if activity.Intensity != "" {
		fmt.Fprintf(&b, "Intensité : %s\n", activity.Intensity)
	}
	if activity.Budget != "" {
		fmt.Fprintf(&b, "Budget : %s\n", label(budgetLabels, activity.Budget))
	}

	constraints := e.DecodeDateAndConstraints()
	if constraints.Date != "" || constraints.Time != "" || constraints.Zone != "" {
		b.WriteString("\nDate & lieu\n-----------\n")
		if constraints.Date != "" {
			if parsed, err := time.Parse("2006-01-02", constraints.Date); err == nil {
				fmt.Fprintf(&b, "Date : %s\n", FormatExportDate(parsed))
			} else {
				fmt.Fprintf(&b, "Date : %s\n", constraints.Date)
			}
		}
		if constraints.Time != "" {
			fmt.Fprintf(&b, "Heure : %s\n", constraints.Time)
		}
		if constraints.Zone != "" {
			fmt.Fprintf(&b, "Zone : %s\n", label(zoneLabels, constraints.Zone))
		}
	}

	personalization := e.DecodePersonalization()
	if personalization.GroupDynamics != "" || personalization.Vibe != "" || personalization.Request != "" {
		b.WriteString("\nPersonnalisation\n----------------\n")
		if personalization.GroupDynamics != "" {
			fmt.Fprintf(&b, "Groupe : %s\n", personalization.GroupDynamics)
		}
		if personalization.Vibe != "" {
			fmt.Fprintf(&b, "Ambiance recherchée : %s\n", personalization.Vibe)
		}
		if personalization.Request != "" {
			fmt.Fprintf(&b, "Demande particulière : %s\n", personalization.Request)
		}
	}

	return b.String()
}
