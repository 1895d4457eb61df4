package schema

import (
	"testing"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "userSoil", want: `"userSoil"`},
		{in: "_tmp1", want: `"_tmp1"`},
		{in: "soil30", want: `"soil30"`},
		{in: "", wantErr: true},
		{in: "1soil", wantErr: true},
		{in: "user soil", wantErr: true},
		{in: `user"`, wantErr: true},
		{in: "user;--", wantErr: true},
		{in: "plant-name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Quote(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidIdentifier)
				require.ErrorIs(t, err, common.ErrorValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustQuote_Panics(t *testing.T) {
	assert.Equal(t, `"uid"`, MustQuote("uid"))
	assert.Panics(t, func() { MustQuote("bad name") })
}

func TestValidateType(t *testing.T) {
	for _, ok := range []string{"", "TEXT", "integer", "VARCHAR(20)", "CHAR(7)", "DECIMAL(10, 2)", "UNSIGNED BIG INT"} {
		assert.NoError(t, validateType(ok), ok)
	}
	for _, bad := range []string{"TEXT)", "INT; DROP", "(TEXT)", "VARCHAR(x)"} {
		assert.Error(t, validateType(bad), bad)
	}
}

func TestColumnAddable(t *testing.T) {
	tests := []struct {
		mods string
		want bool
	}{
		{"", true},
		{"DEFAULT 0", true},
		{"NOT NULL DEFAULT ''", true},
		{"NOT NULL", false},
		{"PRIMARY KEY", false},
		{"UNIQUE", false},
		{"NOT NULL DEFAULT CURRENT_TIMESTAMP", false},
		{"DEFAULT (1 + 1)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Column{Name: "c", Type: "TEXT", Modifiers: tt.mods}.addable(), tt.mods)
	}
}

func TestCreateSQL(t *testing.T) {
	got := TheftTable.createSQL("userSteal_new")
	assert.Equal(t,
		`CREATE TABLE "userSteal_new" ("uid" TEXT NOT NULL, "soilIndex" INTEGER NOT NULL, "stealerUid" TEXT NOT NULL, `+
			`"stealCount" INTEGER NOT NULL CHECK (stealCount >= 1), "stealTime" INTEGER NOT NULL, `+
			`PRIMARY KEY ("uid", "soilIndex", "stealerUid"))`,
		got)
}

func TestDeclaredTablesAreValid(t *testing.T) {
	for _, s := range All() {
		assert.NoError(t, s.Validate(), s.Name)
	}
}
