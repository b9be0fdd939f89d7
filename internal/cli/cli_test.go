package cli

import (
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"serve": false, "pick": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q command", name)
		}
	}
}

func TestPickFlags_WakeRequest(t *testing.T) {
	f := pickFlags{condition: "Snow", temperature: -3, weekday: "Sun", at: "06:00", play: true, device: "Echo"}

	req := f.wakeRequest(true)
	if req.Condition != "Snow" || req.Temperature == nil || *req.Temperature != -3 {
		t.Errorf("weather = %+v", req.WeatherRequest)
	}
	if !req.Play || req.Device != "Echo" || req.Time != "06:00" {
		t.Errorf("request = %+v", req)
	}

	if got := f.wakeRequest(false); got.Temperature != nil {
		t.Errorf("temperature set without flag: %v", *got.Temperature)
	}
}

func TestPickRequiresCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	root := NewRootCmd()
	root.SetArgs([]string{"pick", "--condition", "rain"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected missing credentials error")
	}
}
