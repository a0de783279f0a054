package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/natserract/forcekit/pkg/force"
	"github.com/natserract/forcekit/pkg/soql"
)

// accountsWithContacts runs a parent-to-child subquery and dumps the result.
// Subqueries are opaque to the builder; the SELECT list carries them verbatim.
func accountsWithContacts(ctx context.Context, session *force.Session) {
	stmt := soql.Select(
		"Id",
		"Name",
		"(SELECT Id, LastName, Email FROM Contacts)",
	).
		From("Account").
		Where("Name != " + soql.QuoteString("")).
		OrderBy("Name ASC").
		Limit(25).
		String()

	resp, err := session.Query(ctx, stmt)
	if err != nil {
		panic(err)
	}

	b, err := json.MarshalIndent(resp.Records, "", "  ")
	if err != nil {
		panic(err)
	}

	fmt.Printf("total=%d done=%v\n", resp.TotalSize, resp.Done)
	fmt.Println(string(b))
}
