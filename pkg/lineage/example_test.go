package lineage_test

import (
	"fmt"

	"github.com/matzehuels/lens/pkg/lineage"
)

func ExampleTrace() {
	g, _ := lineage.FromParts(
		[]lineage.Node{
			{ID: "src_crm", Name: "Salesforce CRM", Kind: lineage.KindAPI},
			{ID: "stg_cust", Name: "raw.stg_customers", Kind: lineage.KindTable},
			{ID: "this_asset", Name: "gold.cust_360_master", Kind: lineage.KindTable, Certification: lineage.CertCertified},
			{ID: "dash_exec", Name: "Executive Overview", Kind: lineage.KindDashboard},
		},
		[]lineage.Edge{
			{Source: "src_crm", Target: "stg_cust"},
			{Source: "stg_cust", Target: "this_asset"},
			{Source: "this_asset", Target: "dash_exec"},
		},
	)

	res := lineage.Trace(g, "this_asset")
	for _, e := range res.Upstream {
		fmt.Printf("upstream   %-20s direct=%v\n", e.Node.Name, e.Direct)
	}
	for _, e := range res.Downstream {
		fmt.Printf("downstream %-20s direct=%v\n", e.Node.Name, e.Direct)
	}
	// Output:
	// upstream   Salesforce CRM       direct=false
	// upstream   raw.stg_customers    direct=true
	// downstream Executive Overview   direct=true
}

func ExampleDirectCounts() {
	g := lineage.New()
	_ = g.AddNode(lineage.Node{ID: "a", Kind: lineage.KindTable})
	_ = g.AddNode(lineage.Node{ID: "b", Kind: lineage.KindTable})
	_ = g.AddNode(lineage.Node{ID: "c", Kind: lineage.KindDashboard})
	_ = g.AddEdge(lineage.Edge{Source: "a", Target: "b"})
	_ = g.AddEdge(lineage.Edge{Source: "b", Target: "c"})

	up, down := lineage.DirectCounts(g, "b")
	fmt.Println("upstream:", up, "downstream:", down)
	// Output:
	// upstream: 1 downstream: 1
}
