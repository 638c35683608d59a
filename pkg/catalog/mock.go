package catalog

import "github.com/matzehuels/lens/pkg/graph"

// MockFocal is the ID of the catalogued asset within the mock lineage.
const MockFocal = "this_asset"

// MockLineage returns the eight-node lineage shared by every mock asset:
// two sources feed two staging tables, which feed the gold master, which in
// turn feeds a dashboard, a churn model and a finance mart.
func MockLineage() graph.Graph {
	return graph.Graph{
		Focal: MockFocal,
		Nodes: []graph.Node{
			{ID: "src_crm", Name: "Salesforce CRM", Type: "API Endpoint"},
			{ID: "src_billing", Name: "Stripe Events", Type: "Pipeline"},
			{ID: "stg_cust", Name: "raw.stg_customers", Type: "Table"},
			{ID: "stg_orders", Name: "raw.stg_orders", Type: "Table"},
			{ID: MockFocal, Name: "gold.cust_360_master", Type: "Table", Status: "Certified"},
			{ID: "dash_exec", Name: "Executive Overview", Type: "Dashboard"},
			{ID: "model_churn", Name: "Churn Predictor v2", Type: "View"},
			{ID: "mart_finance", Name: "finance.monthly_rollups", Type: "Table"},
		},
		Links: []graph.Link{
			{Source: "src_crm", Target: "stg_cust"},
			{Source: "src_billing", Target: "stg_orders"},
			{Source: "stg_cust", Target: MockFocal},
			{Source: "stg_orders", Target: MockFocal},
			{Source: MockFocal, Target: "dash_exec"},
			{Source: MockFocal, Target: "model_churn"},
			{Source: MockFocal, Target: "mart_finance"},
		},
	}
}

// MockAssets returns the demo asset list.
func MockAssets() []Asset {
	base := Asset{
		ID:            "asset-123",
		TechnicalName: "gold.cust_360_master",
		FriendlyName:  "Customer 360 Gold Master",
		Domain:        "Sales & Marketing",
		Platform:      "Snowflake",
		Environment:   EnvProd,
		Type:          "Table",
		Certification: "Certified",
		Description:   "The definitive single view of the customer, aggregating CRM, Billing, and Support data. Used for segmentation, churn prediction, and financial reporting.",
		Owner:         "Data Engineering (Team Alpha)",
		Steward:       "Sarah Jenkins",
		Lineage:       MockLineage(),
	}
	variant := func(id, technical, friendly, domain, typ, cert, desc string) Asset {
		a := base
		a.ID, a.TechnicalName, a.FriendlyName = id, technical, friendly
		a.Domain, a.Type, a.Certification, a.Description = domain, typ, cert, desc
		a.Lineage = MockLineage()
		return a
	}
	return []Asset{
		base,
		variant("asset-124", "raw.web_clickstream", "Web Clickstream Raw", "Product", "Table", "Warning",
			"Raw event logs from the main website. High volume, uncleaned."),
		variant("asset-125", "finance.revenue_forecast_2024", "Revenue Forecast 2024", "Finance", "View", "Certified",
			"Projected revenue models for fiscal year 2024."),
		variant("asset-126", "hr.employee_roster", "Global Employee Roster", "HR", "Table", "Pending Review",
			"Active employee list with hierarchy and department codes."),
		variant("asset-127", "marketing.campaign_performance", "Campaign Performance Aggregates", "Marketing", "Table", "Certified",
			"Ad spend vs conversion metrics across Google, Meta, and LinkedIn."),
	}
}

// Mock returns a catalog over [MockAssets].
func Mock() *Static {
	s, err := NewStatic(MockAssets())
	if err != nil {
		panic(err)
	}
	return s
}
