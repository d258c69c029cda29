package relations

import "testing"

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()

	if f.MaxWorks != 10 || f.MaxCastPerWork != 15 {
		t.Errorf("limits = (%d, %d), want (10, 15)", f.MaxWorks, f.MaxCastPerWork)
	}
	for _, d := range []string{"Directing", "Writing", "Production", "Sound"} {
		if !f.IsKeyDepartment(d) {
			t.Errorf("%s should be a key department", d)
		}
	}
	if f.IsKeyDepartment("Acting") || f.IsKeyDepartment("Crew") {
		t.Error("Acting and Crew are not key departments")
	}
	if !f.IsExcluded([]int{18, 10767}) || !f.IsExcluded([]int{10763}) {
		t.Error("talk and news genres should be excluded")
	}
	if f.IsExcluded([]int{18, 35}) || f.IsExcluded(nil) {
		t.Error("drama and comedy should not be excluded")
	}
}

func TestToFilter(t *testing.T) {
	tests := []struct {
		name      string
		props     ExpansionProps
		wantWorks int
		wantCast  int
		wantDepts []string
		wantErr   bool
	}{
		{
			name:      "empty file keeps defaults",
			wantWorks: DefaultMaxWorks,
			wantCast:  DefaultMaxCastPerWork,
			wantDepts: []string{"Directing", "Production", "Sound", "Writing"},
		},
		{
			name:      "overrides",
			props:     ExpansionProps{MaxWorks: 3, MaxCastPerWork: 5, KeyDepartments: []string{"Directing"}},
			wantWorks: 3,
			wantCast:  5,
			wantDepts: []string{"Directing"},
		},
		{
			name:    "negative limit rejected",
			props:   ExpansionProps{MaxWorks: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFilter(File{PersonExpansion: tt.props})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.MaxWorks != tt.wantWorks || got.MaxCastPerWork != tt.wantCast {
				t.Errorf("limits = (%d, %d), want (%d, %d)", got.MaxWorks, got.MaxCastPerWork, tt.wantWorks, tt.wantCast)
			}
			depts := got.Departments()
			if len(depts) != len(tt.wantDepts) {
				t.Fatalf("Departments() = %v, want %v", depts, tt.wantDepts)
			}
			for i := range depts {
				if depts[i] != tt.wantDepts[i] {
					t.Errorf("Departments() = %v, want %v", depts, tt.wantDepts)
					break
				}
			}
		})
	}
}

func TestMergeKeepsBaseWhenFileIsEmpty(t *testing.T) {
	base := DefaultFilter()
	base.MaxWorks = 4

	got, err := Merge(base, File{})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.MaxWorks != 4 || got.MaxCastPerWork != DefaultMaxCastPerWork {
		t.Errorf("Merge() = %+v", got)
	}

	got, err = Merge(base, File{PersonExpansion: ExpansionProps{MaxWorks: 7}})
	if err != nil || got.MaxWorks != 7 {
		t.Errorf("Merge() = %+v, %v, want MaxWorks 7", got, err)
	}
}
