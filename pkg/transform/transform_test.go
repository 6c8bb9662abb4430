package transform

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFromOptions(t *testing.T) {
	quat := mgl64.Quat{W: 1, V: mgl64.Vec3{1, 2, 3}}.Normalize()
	trans := mgl64.Vec3{1, 2, 3}
	rot := quat.Mat4()

	t.Run("Empty", func(t *testing.T) {
		if got := FromOptions(Options{}); got != mgl64.Ident4() {
			t.Errorf("FromOptions() = %v, want identity", got)
		}
	})

	t.Run("Matrix", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		var fix mgl64.Mat4
		for i := range fix {
			fix[i] = rng.Float64()
		}
		// the matrix wins even when other arguments are present
		if got := FromOptions(Options{Matrix: &fix, Translation: &trans}); got != fix {
			t.Errorf("FromOptions(matrix) = %v, want %v", got, fix)
		}
	})

	t.Run("Quaternion", func(t *testing.T) {
		if got := FromOptions(Options{Quaternion: &quat}); !Equal(got, rot, 1e-12) {
			t.Errorf("FromOptions(quat) = %v, want %v", got, rot)
		}
	})

	t.Run("Translation", func(t *testing.T) {
		if got := FromOptions(Options{Translation: &trans}); got != Translation(1, 2, 3) {
			t.Errorf("FromOptions(translation) = %v", got)
		}
	})

	t.Run("Both", func(t *testing.T) {
		got := FromOptions(Options{Quaternion: &quat, Translation: &trans})
		if !got.Mat3().ApproxEqualThreshold(rot.Mat3(), 1e-12) {
			t.Errorf("rotation block = %v, want %v", got.Mat3(), rot.Mat3())
		}
		if TranslationOf(got) != trans {
			t.Errorf("translation = %v, want %v", TranslationOf(got), trans)
		}
	})
}

func TestValidate(t *testing.T) {
	bad := Identity()
	bad.Set(3, 1, 0.5)
	nan := Identity()
	nan.Set(0, 3, math.NaN())

	tests := []struct {
		name string
		m    mgl64.Mat4
		want error
	}{
		{"Identity", Identity(), nil},
		{"Translation", Translation(4, 5, 6), nil},
		{"BottomRow", bad, ErrNotAffine},
		{"NaN", nan, ErrNotFinite},
		{"Zero", mgl64.Mat4{}, ErrNotAffine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.m); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	if err := Validate(Coerce(bad)); err != nil {
		t.Errorf("Coerce() result should validate: %v", err)
	}
}

func TestInverse(t *testing.T) {
	rigid := mgl64.HomogRotate3D(0.7, mgl64.Vec3{1, 1, 0}.Normalize())
	rigid.Set(0, 3, 3)
	rigid.Set(2, 3, -2)

	scaled := mgl64.Scale3D(2, 3, 4)
	scaled.Set(1, 3, 1)

	mirror := mgl64.Scale3D(-1, 1, 1)

	tests := []struct {
		name      string
		m         mgl64.Mat4
		wantRigid bool
	}{
		{"Identity", Identity(), true},
		{"Rigid", rigid, true},
		{"Scaled", scaled, false},
		{"Mirror", mirror, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsRigid(tt.m) != tt.wantRigid {
				t.Errorf("IsRigid() = %v, want %v", IsRigid(tt.m), tt.wantRigid)
			}
			inv, err := Inverse(tt.m)
			if err != nil {
				t.Fatal(err)
			}
			if !Equal(tt.m.Mul4(inv), Identity(), 1e-9) {
				t.Errorf("m * Inverse(m) = %v, want identity", tt.m.Mul4(inv))
			}
			if err := Validate(inv); err != nil {
				t.Errorf("inverse should stay affine: %v", err)
			}
		})
	}

	if _, err := Inverse(mgl64.Scale3D(0, 1, 1)); !errors.Is(err, ErrSingular) {
		t.Errorf("Inverse(singular) error = %v, want ErrSingular", err)
	}
}

func TestRows(t *testing.T) {
	m := Translation(7, 8, 9)
	rows := Rows(m)
	if rows[0][3] != 7 || rows[1][3] != 8 || rows[2][3] != 9 || rows[3][3] != 1 {
		t.Errorf("Rows() = %v, want row-major translation column", rows)
	}
	if FromRows(rows) != m {
		t.Error("FromRows(Rows(m)) != m")
	}
}
