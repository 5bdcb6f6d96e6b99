package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func callbackRequest(state string, cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state="+state, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestState(t *testing.T) {
	w := httptest.NewRecorder()
	state, err := NewState(w, false)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if state == "" {
		t.Fatal("empty state")
	}
	cookies := w.Result().Cookies()

	if !ValidState(callbackRequest(state, cookies)) {
		t.Error("matching state rejected")
	}
	if ValidState(callbackRequest("other", cookies)) {
		t.Error("mismatched state accepted")
	}
	if ValidState(callbackRequest("", cookies)) {
		t.Error("empty state accepted")
	}
	if ValidState(callbackRequest(state, nil)) {
		t.Error("state without cookie accepted")
	}
}

func TestStateIsRandom(t *testing.T) {
	a, _ := NewState(httptest.NewRecorder(), false)
	b, _ := NewState(httptest.NewRecorder(), false)
	if a == b {
		t.Error("states should differ")
	}
}

func TestClearState(t *testing.T) {
	w := httptest.NewRecorder()
	ClearState(w)
	cs := w.Result().Cookies()
	if len(cs) != 1 || cs[0].Name != stateCookieName || cs[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v", cs)
	}
}
