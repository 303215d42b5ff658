package model

import "testing"

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"ADMISSION", "HIRE", "ADDON", "MERCH"} {
		got, err := ParseCategory(raw)
		if err != nil {
			t.Fatalf("ParseCategory(%q): unexpected error %v", raw, err)
		}
		if string(got) != raw {
			t.Fatalf("ParseCategory(%q) = %q", raw, got)
		}
	}
}

func TestParseCategoryRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "FOOD", "admission", "Merch"} {
		if _, err := ParseCategory(raw); err == nil {
			t.Fatalf("ParseCategory(%q): expected error, got none", raw)
		}
	}
}

func TestCategoryBucket(t *testing.T) {
	cases := []struct {
		category Category
		want     Bucket
	}{
		{CategoryAdmission, BucketEvent},
		{CategoryHire, BucketEvent},
		{CategoryAddon, BucketAddon},
		{CategoryMerch, BucketMerch},
	}
	for _, tc := range cases {
		if got := tc.category.Bucket(); got != tc.want {
			t.Fatalf("%s.Bucket() = %q, want %q", tc.category, got, tc.want)
		}
	}
}
