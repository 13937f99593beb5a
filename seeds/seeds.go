package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/actuallystonmai/alt-choice/internal/domain"
	"github.com/actuallystonmai/alt-choice/internal/logging"
	"github.com/actuallystonmai/alt-choice/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type user struct {
	Name  string
	Email string
}

var users = []user{
	{"Ayesha Rahman", "ayesha@example.com"},
	{"Brian Okafor", "brian@example.com"},
	{"Chen Wei", "chen@example.com"},
	{"Dana Petrov", "dana@example.com"},
	{"Elif Yilmaz", "elif@example.com"},
	{"Farhan Ahmed", "farhan@example.com"},
}

type product struct {
	Name        string
	Brand       string
	Alternative string
	AltBrand    string
}

var products = []product{
	{"Photoshop", "Adobe", "GIMP", "GNOME"},
	{"Microsoft Office", "Microsoft", "LibreOffice", "The Document Foundation"},
	{"Coca-Cola", "The Coca-Cola Company", "Mojo", "Akij Food"},
	{"Slack", "Salesforce", "Mattermost", "Mattermost Inc."},
	{"Evernote", "Bending Spoons", "Joplin", "Joplin"},
	{"Spotify", "Spotify AB", "Deezer", "Deezer SA"},
	{"Zoom", "Zoom Video", "Jitsi Meet", "8x8"},
	{"Chrome", "Google", "Firefox", "Mozilla"},
	{"iCloud", "Apple", "Nextcloud", "Nextcloud GmbH"},
	{"Figma", "Figma Inc.", "Penpot", "Kaleidos"},
}

var reasons = []string{
	"Free and open source",
	"Better privacy",
	"Cheaper for teams",
	"Runs on every platform",
	"Local product, supports the community",
}

// Setup inserts sample queries and recommendations. Each query's
// recommendationCount equals the number of recommendations seeded for it.
func Setup(ctx context.Context, svc *service.Service, force bool) error {
	existing, err := svc.ListQueries(ctx)
	if err != nil {
		return fmt.Errorf("check existing queries: %w", err)
	}
	if len(existing) > 0 && !force {
		logging.Info().Int("queries", len(existing)).Msg("[seed] database already seeded, skipping")
		return nil
	}

	rng := rand.New(rand.NewSource(42))

	logging.Info().Msg("[seed] inserting queries and recommendations")
	var nQueries, nRecs int
	for i, p := range products {
		author := users[i%len(users)]
		recommenders := pickRecommenders(rng, author, rng.Intn(4))

		res, err := svc.CreateQuery(ctx, queryDocument(rng, p, author, len(recommenders)))
		if err != nil {
			return fmt.Errorf("seed query %q: %w", p.Name, err)
		}
		nQueries++
		queryID := idString(res.InsertedID)

		for _, r := range recommenders {
			doc := recommendationDocument(rng, p, queryID, author, r)
			if _, err := svc.CreateRecommendation(ctx, doc); err != nil {
				return fmt.Errorf("seed recommendation for %q: %w", p.Name, err)
			}
			nRecs++
		}
	}

	logging.Info().Int("queries", nQueries).Int("recommendations", nRecs).Msg("[seed] seeding complete")
	return nil
}

func queryDocument(rng *rand.Rand, p product, author user, recCount int) domain.Document {
	return domain.Document{
		"productName":             p.Name,
		"productBrand":            p.Brand,
		"productImageURL":         fmt.Sprintf("https://picsum.photos/seed/%d/400/300", rng.Intn(1000)),
		"queryTitle":              fmt.Sprintf("Is there any better alternative to %s?", p.Name),
		"boycottingReasonDetails": reasons[rng.Intn(len(reasons))],
		"queryUser": map[string]any{
			"name":  author.Name,
			"email": author.Email,
		},
		"postedTimestamp":     daysAgo(rng, 120),
		"recommendationCount": recCount,
	}
}

func recommendationDocument(rng *rand.Rand, p product, queryID string, author, recommender user) domain.Document {
	return domain.Document{
		"queryId":                 queryID,
		"queryTitle":              fmt.Sprintf("Is there any better alternative to %s?", p.Name),
		"productName":             p.Name,
		"userEmail":               author.Email,
		"userName":                author.Name,
		"recommenderEmail":        recommender.Email,
		"recommenderName":         recommender.Name,
		"recommendationTitle":     fmt.Sprintf("Try %s", p.Alternative),
		"recommendedProductName":  p.Alternative,
		"recommendedProductBrand": p.AltBrand,
		"recommendationReason":    reasons[rng.Intn(len(reasons))],
		"recommendedTimestamp":    daysAgo(rng, 60),
	}
}

// pickRecommenders draws up to n distinct users other than author.
func pickRecommenders(rng *rand.Rand, author user, n int) []user {
	candidates := make([]user, 0, len(users)-1)
	for _, u := range users {
		if u.Email != author.Email {
			candidates = append(candidates, u)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:min(n, len(candidates))]
}

// seedEpoch anchors sample timestamps so every run produces the same data.
var seedEpoch = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(rng *rand.Rand, maxDays int) string {
	return seedEpoch.AddDate(0, 0, -rng.Intn(maxDays)).Format(time.RFC3339)
}

// idString normalises the inserted id returned by any store backend.
func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
