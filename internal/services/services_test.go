package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"straycare/internal/api"
	"straycare/internal/types"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, api.New(srv.URL)
}

func writeEnvelope(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	w.Write([]byte(`{"code":200,"message":"OK","data":` + string(raw) + `,"timestamp":1700000000}`))
}

func TestPageTranslationRoundTrip(t *testing.T) {
	for n := 1; n <= 200; n++ {
		if got := fromWirePage(toWirePage(n)); got != n {
			t.Fatalf("round trip broke at %d: got %d", n, got)
		}
	}
}

func TestPageClampsBelowOne(t *testing.T) {
	assert.Equal(t, 0, toWirePage(0))
	assert.Equal(t, 0, toWirePage(-3))
	assert.Equal(t, 1, fromWirePage(-1))
}

func TestAnimalsListTranslatesPagination(t *testing.T) {
	var gotPage, gotSize, gotSpecies string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		gotSize = r.URL.Query().Get("size")
		gotSpecies = r.URL.Query().Get("species")
		writeEnvelope(w, map[string]any{
			"content":       []map[string]any{{"id": "a1", "species": "DOG"}},
			"totalElements": 25,
			"totalPages":    3,
			"size":          12,
			"number":        2, // 0-based third page
		})
	})

	animals := NewAnimals(c, nil)
	page, err := animals.List(context.Background(), ListFilter{Species: types.SpeciesDog, Page: 3, Size: 12})
	require.NoError(t, err)

	assert.Equal(t, "2", gotPage, "1-based caller page 3 must go out as 0-based 2")
	assert.Equal(t, "12", gotSize)
	assert.Equal(t, "DOG", gotSpecies)
	assert.Equal(t, 3, page.Page, "0-based wire page 2 must come back as 1-based 3")
	assert.Equal(t, 25, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "a1", page.Content[0].ID)
}

func TestAnimalsListDefaultsEmptyContent(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{"totalElements": 0, "number": 0})
	})
	page, err := NewAnimals(c, nil).List(context.Background(), ListFilter{Page: 1})
	require.NoError(t, err)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
}

func TestNearbyPassesCoordinates(t *testing.T) {
	var lat, lon, radius string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		lat = r.URL.Query().Get("lat")
		lon = r.URL.Query().Get("lon")
		radius = r.URL.Query().Get("radius")
		writeEnvelope(w, []map[string]any{{"id": "a7", "species": "CAT"}})
	})

	animals, err := NewAnimals(c, nil).Nearby(context.Background(), 12.9716, 77.5946, 5)
	require.NoError(t, err)
	assert.Equal(t, "12.9716", lat)
	assert.Equal(t, "77.5946", lon)
	assert.Equal(t, "5", radius)
	require.Len(t, animals, 1)
	assert.Equal(t, "a7", animals[0].ID)
}

func TestNearbyCoercesObjectToEmptySlice(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Backend shape bug: data is an object, not an array.
		writeEnvelope(w, map[string]any{"unexpected": true})
	})

	animals, err := NewAnimals(c, nil).Nearby(context.Background(), 1, 2, 5)
	require.NoError(t, err, "shape errors must not propagate")
	assert.NotNil(t, animals)
	assert.Empty(t, animals)
}

func TestNearbyCoercesNullToEmptySlice(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"message":"OK","data":null,"timestamp":1}`))
	})
	animals, err := NewAnimals(c, nil).Nearby(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, animals)
}

func TestReportSendsSingleMultipart(t *testing.T) {
	dir := t.TempDir()
	img1 := filepath.Join(dir, "front.jpg")
	img2 := filepath.Join(dir, "side.jpg")
	require.NoError(t, os.WriteFile(img1, []byte("img-1"), 0o644))
	require.NoError(t, os.WriteFile(img2, []byte("img-2"), 0o644))

	posts := 0
	var form map[string][]string
	var images int
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		posts++
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = r.MultipartForm.Value
		images = len(r.MultipartForm.File["images"])
		writeEnvelope(w, map[string]any{"id": "a100", "species": "DOG", "approvalStatus": "PENDING"})
	})

	animal, err := NewAnimals(c, nil).Report(context.Background(), ReportInput{
		Species:      types.SpeciesDog,
		Breed:        "indie",
		Gender:       types.GenderFemale,
		HealthStatus: types.HealthInjured,
		IsVaccinated: true,
		Location: types.LocationRecord{
			Address:   "12 MG Road",
			City:      "Bengaluru",
			State:     "Karnataka",
			Latitude:  12.9716,
			Longitude: 77.5946,
		},
		Images: []string{img1, img2},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, posts, "exactly one multipart POST")
	assert.Equal(t, 2, images, "both files attached")
	assert.Equal(t, []string{"DOG"}, form["species"])
	assert.Equal(t, []string{"indie"}, form["breed"])
	assert.Equal(t, []string{"FEMALE"}, form["gender"])
	assert.Equal(t, []string{"INJURED"}, form["healthStatus"])
	assert.Equal(t, []string{"12 MG Road"}, form["address"])
	assert.Equal(t, []string{"12.9716"}, form["latitude"])
	assert.Equal(t, []string{"77.5946"}, form["longitude"])
	assert.Equal(t, []string{"Bengaluru"}, form["city"])
	assert.Equal(t, "a100", animal.ID)
	assert.Equal(t, types.ApprovalPending, animal.ApprovalStatus)
}

// The server binds eleven required flat form parameters; a report with no
// optional fields filled must still carry every one of them.
func TestReportFillsRequiredFormFields(t *testing.T) {
	var form map[string][]string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = r.MultipartForm.Value
		writeEnvelope(w, map[string]any{"id": "a200", "species": "CAT"})
	})

	_, err := NewAnimals(c, nil).Report(context.Background(), ReportInput{
		Species:      types.SpeciesCat,
		Breed:        "persian",
		Gender:       types.GenderUnknown,
		HealthStatus: types.HealthHealthy,
		Location: types.LocationRecord{
			Address:   "4 Park Street",
			City:      "Kolkata",
			Latitude:  22.5726,
			Longitude: 88.3639,
		},
	})
	require.NoError(t, err)

	required := []string{
		"species", "breed", "color", "gender", "temperament", "healthStatus",
		"latitude", "longitude", "address", "area", "city",
	}
	for _, name := range required {
		require.Contains(t, form, name, "form field %q", name)
		assert.NotEmpty(t, form[name][0], "form field %q", name)
	}
	assert.Equal(t, []string{"persian"}, form["color"], "color defaults to the breed")
	assert.Equal(t, []string{"FRIENDLY"}, form["temperament"])
	assert.Equal(t, []string{"Kolkata"}, form["area"], "area mirrors the city")
}

func TestAuthLoginUnwrapsEnvelope(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var creds types.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@b.com", creds.Email)
		writeEnvelope(w, map[string]any{
			"token":     "jwt-xyz",
			"tokenType": "Bearer",
			"user":      map[string]any{"id": "u1", "name": "Asha", "email": "a@b.com", "role": "PUBLIC_USER"},
		})
	})

	res, err := NewAuth(c).Login(context.Background(), types.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-xyz", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, types.RolePublicUser, res.User.Role)
}

func TestAuthPromoteReturnsEnvelopeMessage(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/promote", r.URL.Path)
		w.Write([]byte(`{"code":200,"message":"user promoted to VOLUNTEER","data":null,"timestamp":1}`))
	})

	msg, err := NewAuth(c).Promote(context.Background(), PromoteInput{Email: "v@b.com", Role: types.RoleVolunteer})
	require.NoError(t, err)
	assert.Equal(t, "user promoted to VOLUNTEER", msg)
}

func TestCareHistoryPagination(t *testing.T) {
	var path, page string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		page = r.URL.Query().Get("page")
		writeEnvelope(w, map[string]any{
			"content":       []map[string]any{{"id": "c1", "careType": "FEEDING"}},
			"totalElements": 1,
			"totalPages":    1,
			"size":          10,
			"number":        0,
		})
	})

	got, err := NewCare(c).History(context.Background(), "a1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "/animals/a1/care/history", path)
	assert.Equal(t, "0", page)
	assert.Equal(t, 1, got.Page)
	require.Len(t, got.Content, 1)
	assert.Equal(t, types.CareFeeding, got.Content[0].CareType)
}

func TestCareGlobalFeeds(t *testing.T) {
	var path, query string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		switch r.URL.Path {
		case "/care/records":
			writeEnvelope(w, map[string]any{
				"content":       []map[string]any{{"id": "c1", "animalId": "a1", "careType": "CHECKUP"}},
				"totalElements": 1, "totalPages": 1, "size": 10, "number": 0,
			})
		case "/care/records/recent":
			writeEnvelope(w, []map[string]any{{"id": "c2", "animalId": "a2", "careType": "FEEDING"}})
		case "/animals/a3/care/feeding/schedule":
			writeEnvelope(w, []map[string]any{{"id": "f1", "animalId": "a3", "foodType": "kibble"}})
		default:
			http.NotFound(w, r)
		}
	})

	care := NewCare(c)

	page, err := care.Records(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "/care/records", path)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "a1", page.Content[0].AnimalID)

	recent, err := care.RecentRecords(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "/care/records/recent", path)
	assert.Equal(t, "limit=5", query)
	require.Len(t, recent, 1)
	assert.Equal(t, types.CareFeeding, recent[0].CareType)

	schedule, err := care.FeedingSchedule(context.Background(), "a3")
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "kibble", schedule[0].FoodType)
}

func TestCommunityAllLogs(t *testing.T) {
	var path string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeEnvelope(w, map[string]any{
			"content": []map[string]any{{"id": "l1", "animalId": "a1", "type": "SIGHTING"}},
			"number":  0,
		})
	})

	page, err := NewCommunity(c).AllLogs(context.Background(), LogFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, "/community/logs", path)
	require.Len(t, page.Content, 1)
}

func TestAuthRefreshSendsToken(t *testing.T) {
	var path string
	var body map[string]string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(w, map[string]any{
			"token": "jwt-new", "refreshToken": "rt-new",
			"user": map[string]any{"id": "u1"},
		})
	})

	res, err := NewAuth(c).Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "/auth/refresh", path)
	assert.Equal(t, "rt-old", body["refreshToken"])
	assert.Equal(t, "jwt-new", res.Token)
	assert.Equal(t, "rt-new", res.RefreshToken)
}

func TestCommunityUpvotePaths(t *testing.T) {
	var method, path string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		writeEnvelope(w, nil)
	})

	comm := NewCommunity(c)
	require.NoError(t, comm.Upvote(context.Background(), "a1", "log9"))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/animals/a1/community/logs/log9/upvote", path)

	require.NoError(t, comm.RemoveUpvote(context.Background(), "a1", "log9"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/animals/a1/community/logs/log9/upvote", path)
}

func TestCommunityLogsFilter(t *testing.T) {
	var query string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeEnvelope(w, map[string]any{
			"content": []map[string]any{{"id": "l1", "type": "SIGHTING", "urgency": "HIGH"}},
			"number":  0,
		})
	})

	page, err := NewCommunity(c).Logs(context.Background(), "a2", LogFilter{Type: types.LogSighting, Page: 1, Size: 5})
	require.NoError(t, err)
	assert.Contains(t, query, "type=SIGHTING")
	assert.Contains(t, query, "size=5")
	require.Len(t, page.Content, 1)
	assert.Equal(t, types.UrgencyHigh, page.Content[0].Urgency)
}
