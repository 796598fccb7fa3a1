package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if (ConsoleState{}).TableName() != "console_states" {
		t.Errorf("expected table name console_states, got %s", ConsoleState{}.TableName())
	}
	if (EditLog{}).TableName() != "edit_logs" {
		t.Errorf("expected table name edit_logs, got %s", EditLog{}.TableName())
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"movie", KindMovie, false},
		{" Show ", KindShow, false},
		{"tv", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := ParseKind(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDecodeRecord_MovieWithMid(t *testing.T) {
	data := []byte(`{"mid": 5, "title": "Heat", "runtime": 170, "genres": ["Crime"],
		"quality": [{"type": "1080p", "msg_id": 10, "chat_id": -100}]}`)

	rec, err := DecodeRecord(KindMovie, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 5 || rec.Kind != KindMovie {
		t.Errorf("expected movie 5, got %s %d", rec.Kind, rec.ID)
	}
	if rec.Movie == nil || rec.Show != nil {
		t.Fatal("expected only the movie branch to be set")
	}
	if rec.Movie.Title != "Heat" || *rec.Movie.Runtime != 170 {
		t.Errorf("unexpected movie body: %+v", rec.Movie)
	}
	if len(rec.Movie.Quality) != 1 || *rec.Movie.Quality[0].ChatID != -100 {
		t.Errorf("unexpected quality list: %+v", rec.Movie.Quality)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
}

func TestDecodeRecord_ShowSeasonKeys(t *testing.T) {
	for _, key := range []string{"season", "seasons"} {
		data := []byte(`{"sid": "7", "title": "Dark", "` + key + `": [{"season_number": 1, "episodes": [{"episode_number": 1, "name": "Secrets"}]}]}`)

		rec, err := DecodeRecord(KindShow, data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", key, err)
		}
		if rec.ID != 7 {
			t.Errorf("%s: expected id 7, got %d", key, rec.ID)
		}
		if len(rec.Show.Seasons) != 1 || rec.Show.Seasons[0].Episodes[0].Name != "Secrets" {
			t.Errorf("%s: unexpected seasons: %+v", key, rec.Show.Seasons)
		}
	}
}

func TestDecodeRecord_MissingID(t *testing.T) {
	if _, err := DecodeRecord(KindMovie, []byte(`{"title": "x"}`)); err == nil {
		t.Error("expected error for record without identifier")
	}
}

func TestShowPayload_PrunesEmptyFields(t *testing.T) {
	show := &Show{
		Details: Details{Title: "Dark"},
		Seasons: []Season{{SeasonNumber: 1, Episodes: []Episode{{EpisodeNumber: 1, Name: "Pilot"}}}},
	}
	rec := NewShowRecord(7, show)

	data, err := json.Marshal(rec.Payload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"title":"Dark","season":[{"season_number":1,"episodes":[{"episode_number":1,"name":"Pilot"}]}]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestRecordValidate(t *testing.T) {
	bad := &Record{Kind: KindMovie, ID: 1, Show: &Show{}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for movie record with show body")
	}
}

func TestTrendingItem_Unmarshal(t *testing.T) {
	var items []TrendingItem
	data := []byte(`[
		{"id": 1, "title": "A", "poster": "a.jpg", "year": 2020, "media_type": "movie"},
		{"sid": 2, "title": "B", "poster_path": "b.jpg", "release_date": "2019-04-01", "media_type": "show"},
		{"mid": "3", "title": "C", "year": "2021", "vote_average": 7.5}
	]`)
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if items[0].ID != 1 || items[0].Year != "2020" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].ID != 2 || items[1].Poster != "b.jpg" || items[1].Year != "2019" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
	if items[2].ID != 3 || items[2].Rating() != "7.5" {
		t.Errorf("unexpected third item: %+v", items[2])
	}
}

func TestTrendingSelection(t *testing.T) {
	var sel TrendingSelection

	if !sel.Add(KindMovie, TrendingItem{ID: 1, Title: "A"}) {
		t.Error("expected first add to succeed")
	}
	if sel.Add(KindMovie, TrendingItem{ID: 1, Title: "A"}) {
		t.Error("expected duplicate add to be ignored")
	}
	sel.Add(KindShow, TrendingItem{ID: 2, Title: "B"})
	sel.Add(KindMovie, TrendingItem{ID: 3, Title: "C"})

	if !sel.Contains(KindShow, 2) || sel.Contains(KindMovie, 2) {
		t.Error("expected selection to be keyed by kind")
	}
	if sel.Movie[0].MediaType != KindMovie {
		t.Errorf("expected media type to be set, got %q", sel.Movie[0].MediaType)
	}

	if !sel.Remove(KindMovie, 1) {
		t.Error("expected remove to succeed")
	}
	if sel.Remove(KindMovie, 1) {
		t.Error("expected second remove to report missing item")
	}

	update := sel.Update()
	if len(update.Movie) != 1 || update.Movie[0] != 3 || len(update.Show) != 1 || update.Show[0] != 2 {
		t.Errorf("unexpected update: %+v", update)
	}
}

func TestTrendingUpdate_EmptyListsEncodeAsArrays(t *testing.T) {
	var sel TrendingSelection
	data, _ := json.Marshal(sel.Update())
	if string(data) != `{"movie":[],"show":[]}` {
		t.Errorf("expected empty arrays, got %s", data)
	}
}

func TestSplitTrending(t *testing.T) {
	sel := SplitTrending([]TrendingItem{
		{ID: 1, MediaType: KindMovie},
		{ID: 2, MediaType: "tv"},
		{ID: 3, MediaType: "person"},
	})
	if len(sel.Movie) != 1 || len(sel.Show) != 1 {
		t.Fatalf("unexpected split: %+v", sel)
	}
	if sel.Show[0].MediaType != KindShow {
		t.Errorf("expected tv to normalize to show, got %q", sel.Show[0].MediaType)
	}
}

func TestUserUpdate_BlankFieldsAreNull(t *testing.T) {
	update := NewUserUpdate("  ", "Ada", "", "abc", false)

	data, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"username":null,"first_name":"Ada","last_name":null,"slimit":0,"is_active":false}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	user := User{UserID: 1, Username: "old"}
	update.Apply(&user)
	if user.Username != "" || user.FirstName != "Ada" || user.Active() {
		t.Errorf("unexpected user after apply: %+v", user)
	}
}

func TestUser_Display(t *testing.T) {
	u := User{Username: "ada", RegistrationDate: "2024-01-02T03:04:05.123"}
	if u.DisplayName() != "@ada" {
		t.Errorf("expected @ada, got %s", u.DisplayName())
	}
	if u.RegisteredOn() != "2024-01-02" {
		t.Errorf("expected 2024-01-02, got %s", u.RegisteredOn())
	}
	if !u.Active() {
		t.Error("expected missing is_active to mean active")
	}
}

func TestConsoleState_DropUser(t *testing.T) {
	id := int64(2)
	state := ConsoleState{
		Users:         []User{{UserID: 1}, {UserID: 2}, {UserID: 3}},
		EditingUserID: &id,
	}

	state.DropUser(2)

	if len(state.Users) != 2 || state.Users[1].UserID != 3 {
		t.Errorf("unexpected users: %+v", state.Users)
	}
	if state.EditingUserID != nil {
		t.Error("expected editing user to be cleared")
	}
	if _, ok := state.FindUser(2); ok {
		t.Error("expected user 2 to be gone")
	}
}

func TestEditLog_Duration(t *testing.T) {
	start := time.Now()
	done := start.Add(1500 * time.Millisecond)
	log := EditLog{StartedAt: start, CompletedAt: &done}
	if log.Duration() != 1500*time.Millisecond {
		t.Errorf("unexpected duration %v", log.Duration())
	}
	if !strings.Contains((EditLog{}).Duration().String(), "0s") {
		t.Error("expected zero duration for incomplete log")
	}
}

func TestConsoleState_DisplayedUsers(t *testing.T) {
	state := ConsoleState{
		Users:   []User{{UserID: 1}, {UserID: 2}},
		Matches: []User{{UserID: 9}},
	}

	if got := state.DisplayedUsers(); len(got) != 2 {
		t.Errorf("expected loaded list without a query, got %+v", got)
	}

	state.UserQuery = "bob"
	if got := state.DisplayedUsers(); len(got) != 1 || got[0].UserID != 9 {
		t.Errorf("expected matches while searching, got %+v", got)
	}
	if _, ok := state.FindUser(9); !ok {
		t.Error("expected search match to be editable")
	}

	state.DropUser(9)
	if len(state.Matches) != 0 {
		t.Errorf("expected match to be dropped, got %+v", state.Matches)
	}
}
