package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  postgres://u:p@h:5432/d?sslmode=disable  ", "postgres://u:p@h:5432/d?sslmode=disable"},
		{`"host=h user=u dbname=d"`, "host=h user=u dbname=d sslmode=disable"},
		{"host=h  user=u   dbname=d sslmode=require", "host=h user=u dbname=d sslmode=require"},
		{"quotes.db", "quotes.db"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDSN(tc.in); got != tc.want {
			t.Fatalf("NormalizeDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsPostgresDSN(t *testing.T) {
	if !IsPostgresDSN("postgres://u@h/d") || !IsPostgresDSN("host=h user=u dbname=d") {
		t.Fatal("postgres DSNs not recognised")
	}
	if IsPostgresDSN("quotes.db") || IsPostgresDSN("file:test?mode=memory") {
		t.Fatal("sqlite DSNs misrecognised as postgres")
	}
}
