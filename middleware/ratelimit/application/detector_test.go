package application

import "testing"

func TestDetector_IsSuspicious(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want bool
	}{
		{"browser", "Mozilla/5.0 (X11; Linux x86_64)", false},
		{"empty", "", true},
		{"curl", "curl/7.68.0", true},
		{"wget", "Wget/1.21", true},
		{"python", "python-requests/2.31", true},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1)", true},
		{"crawler uppercase", "SOME-CRAWLER", true},
		{"spider", "Baiduspider", true},
		{"scraper", "my-scraper/1.0", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := fakeSet{}
			d := &Detector{Set: set}
			if got := d.IsSuspicious("203.0.113.7", tc.ua); got != tc.want {
				t.Fatalf("IsSuspicious(%q)=%v, want %v", tc.ua, got, tc.want)
			}
			if set["203.0.113.7"] != tc.want {
				t.Fatalf("expected set membership %v", tc.want)
			}
		})
	}
}

func TestDetector_FlaggedIPStaysSuspicious(t *testing.T) {
	set := fakeSet{}
	d := &Detector{Set: set}

	if !d.IsSuspicious("203.0.113.7", "curl/8.0") {
		t.Fatalf("expected curl to be suspicious")
	}
	if !d.IsSuspicious("203.0.113.7", "Mozilla/5.0") {
		t.Fatalf("expected flagged ip to stay suspicious with a browser user-agent")
	}
	if d.IsSuspicious("198.51.100.1", "Mozilla/5.0") {
		t.Fatalf("expected other ip not to be affected")
	}
}

func TestDetector_WorksWithoutSet(t *testing.T) {
	d := &Detector{}
	if !d.IsSuspicious("203.0.113.7", "") {
		t.Fatalf("expected empty user-agent to be suspicious")
	}
	if d.IsSuspicious("203.0.113.7", "Mozilla/5.0") {
		t.Fatalf("expected no memory without a set")
	}
}
