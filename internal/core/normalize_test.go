package core

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Có":                    "co",
		"  ĐỒNG Ý!  ":           "dong y",
		"Không.":                "khong",
		"tôi bị đau  đầu":       "toi bi dau dau",
		"OK":                    "ok",
		"":                      "",
		"Chóng mặt, hoa mắt...": "chong mat, hoa mat",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
