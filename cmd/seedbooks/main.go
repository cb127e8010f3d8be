package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	nUsers  = flag.Int("users", envInt("USERS", 5), "How many users to create")
	nBooks  = flag.Int("books", envInt("BOOKS", 40), "How many books to create")
	pass    = flag.String("pass", env("PASSWORD", "Password123"), "Password for every seeded user")
)

var genres = []string{
	"Science Fiction", "Fantasy", "Mystery", "Romance", "Horror",
	"Non-fiction", "Biography", "History", "Classics", "Thriller",
}

var statuses = []string{"reading", "finished", "want-to-read"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any, hdr map[string]string) (*http.Response, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seeding %d users and %d books on %s\n", *nUsers, *nBooks, *baseURL)

	tokens, err := registerUsers(*nUsers)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	bookIDs, err := createBooks(tokens[0], *nBooks)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := shelveAndReview(tokens, bookIDs); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – register users -----------------------------------------------------
func registerUsers(total int) ([]string, error) {
	tokens := make([]string, 0, total)

	for i := 0; i < total; i++ {
		payload := map[string]string{
			"username": gofakeit.Username() + gofakeit.DigitN(3),
			"email":    gofakeit.Email(),
			"password": *pass,
		}

		resp, err := postJSON("/api/v1/users/register", payload, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("register user %d failed (%d): %s", i+1, resp.StatusCode, must(resp.Body))
		}

		var r struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		tokens = append(tokens, r.Token)
	}

	fmt.Printf("• registered %d users\n", total)
	return tokens, nil
}

// ----------------------------------------------------------------------------
// Step 2 – create books -------------------------------------------------------
func createBooks(token string, total int) ([]string, error) {
	h := map[string]string{"Authorization": "Bearer " + token}
	ids := make([]string, 0, total)

	for i := 1; i <= total; i++ {
		book := map[string]any{
			"title":       gofakeit.BookTitle(),
			"author":      gofakeit.BookAuthor(),
			"description": gofakeit.Paragraph(1, 3, 30, " "),
			"isbn":        gofakeit.DigitN(13),
			"pageCount":   gofakeit.Number(80, 900),
			"publisher":   gofakeit.Company(),
			"genre":       pick(genres, gofakeit.Number(1, 3)),
		}

		resp, err := postJSON("/api/v1/books", book, h)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("create book %d failed (%d): %s", i, resp.StatusCode, must(resp.Body))
		}

		var r struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		ids = append(ids, r.ID)

		if i%20 == 0 || i == total {
			fmt.Printf("  … %d/%d books\n", i, total)
		}
	}
	return dedupe(ids), nil
}

// dedupe drops repeated ids. Random titles can collide, and a collision
// comes back as the already-catalogued book; shelving the same book twice
// for one user would fail.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ----------------------------------------------------------------------------
// Step 3 – shelve and review --------------------------------------------------
func shelveAndReview(tokens, bookIDs []string) error {
	for _, token := range tokens {
		h := map[string]string{"Authorization": "Bearer " + token}

		shelved := pick(bookIDs, gofakeit.Number(3, min(12, len(bookIDs))))
		for _, bookID := range shelved {
			item := map[string]any{
				"bookId": bookID,
				"status": statuses[gofakeit.Number(0, len(statuses)-1)],
			}

			resp, err := postJSON("/api/v1/bookshelf", item, h)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("shelve book failed (%d): %s", resp.StatusCode, must(resp.Body))
			}
			_ = must(resp.Body)

			// Review roughly half of the shelved books.
			if gofakeit.Bool() {
				review := map[string]any{
					"bookId":    bookID,
					"rating":    gofakeit.Number(1, 5),
					"content":   gofakeit.Paragraph(1, 2, 25, " "),
					"recommend": gofakeit.Bool(),
				}
				resp, err := postJSON("/api/v1/reviews", review, h)
				if err != nil {
					return err
				}
				if resp.StatusCode != http.StatusCreated {
					return fmt.Errorf("review failed (%d): %s", resp.StatusCode, must(resp.Body))
				}
				_ = must(resp.Body)
			}
		}
	}

	fmt.Println("• shelved and reviewed")
	return nil
}

// pick returns n distinct random elements from src.
func pick(src []string, n int) []string {
	shuffled := make([]string, len(src))
	copy(shuffled, src)
	gofakeit.ShuffleStrings(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
