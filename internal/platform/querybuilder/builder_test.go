package querybuilder

import "testing"

func TestSelectBuilder_ContainsFoldWithRankedOrder(t *testing.T) {
	query, args, err := Select("manager_id", "manager_name", "team_name").
		From("managers").
		Where(Or(ContainsFold("manager_name", "Bon"), ContainsFold("team_name", "Bon"))).
		OrderByExpr("CASE WHEN LOWER(manager_name) = ? THEN 0 ELSE 1 END", "bon").
		OrderBy("manager_id").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := `SELECT manager_id, manager_name, team_name FROM managers WHERE (LOWER(manager_name) LIKE ? ESCAPE '\' OR LOWER(team_name) LIKE ? ESCAPE '\') ORDER BY CASE WHEN LOWER(manager_name) = ? THEN 0 ELSE 1 END, manager_id LIMIT 50`
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "%bon%" || args[1] != "%bon%" || args[2] != "bon" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := EscapeLike(`100%_a\b`); got != `100\%\_a\\b` {
		t.Fatalf("unexpected escaped value: %s", got)
	}
}

func TestInsertModels_Upsert(t *testing.T) {
	type row struct {
		ID   int64  `db:"manager_id"`
		Name string `db:"manager_name"`
		Skip string `db:"-"`
	}

	query, args, err := InsertModels("managers", []row{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		OnConflictUpdate([]string{"manager_id"}, []string{"manager_name"}))
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO managers (manager_id, manager_name) VALUES (?, ?), (?, ?) ON CONFLICT (manager_id) DO UPDATE SET manager_name = excluded.manager_name"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != int64(1) || args[3] != "B" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("fetch_progress").
		SetExpr("last_page", "CASE WHEN last_page > ? THEN last_page ELSE ? END", 4, 4).
		Set("last_manager_count", 50).
		Where(Eq("id", 1)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE fetch_progress SET last_page = CASE WHEN last_page > ? THEN last_page ELSE ? END, last_manager_count = ? WHERE id = ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != 50 || args[3] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InCondition(t *testing.T) {
	query, args, err := Select("COUNT(*)").
		From("fpl_managers").
		Where(In("manager_id", []int64{3, 5})).
		ToSQL()
	if err != nil {
		t.Fatalf("build count query: %v", err)
	}

	wantQuery := "SELECT COUNT(*) FROM fpl_managers WHERE manager_id IN (?, ?)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != int64(5) {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, args, err = Select("COUNT(*)").From("fpl_managers").Where(In[int64]("manager_id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build empty in query: %v", err)
	}
	if query != "SELECT COUNT(*) FROM fpl_managers WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected empty in query: %s %+v", query, args)
	}
}
