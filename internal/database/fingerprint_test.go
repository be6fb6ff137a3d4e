package database

import "testing"

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses whitespace",
			input: "  SELECT Id,\n\tName   FROM Account  ",
			want:  "select id, name from account",
		},
		{
			name:  "keeps literal contents",
			input: "SELECT Id FROM Account WHERE Name = 'Acme  Corp'",
			want:  "select id from account where name = 'Acme  Corp'",
		},
		{
			name:  "handles escaped quotes in literals",
			input: `SELECT Id FROM Account WHERE Name = 'O\'Brien  X' AND Type = 'A'`,
			want:  `select id from account where name = 'O\'Brien  X' and type = 'A'`,
		},
		{
			name:  "empty query",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("equal for equivalent queries", func(t *testing.T) {
		t.Parallel()

		if Fingerprint("SELECT Id FROM Account") != Fingerprint("select id\nfrom   account") {
			t.Error("expected equal fingerprints")
		}
	})

	t.Run("differs when literals differ in case", func(t *testing.T) {
		t.Parallel()

		if Fingerprint("SELECT Id FROM Account WHERE Name = 'acme'") == Fingerprint("SELECT Id FROM Account WHERE Name = 'ACME'") {
			t.Error("expected different fingerprints")
		}
	})

	t.Run("is a hex SHA3-256 digest", func(t *testing.T) {
		t.Parallel()

		// SHA3-256 of the empty string
		const emptyDigest = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
		if got := Fingerprint(""); got != emptyDigest {
			t.Errorf("Fingerprint(\"\") = %q", got)
		}
	})
}
