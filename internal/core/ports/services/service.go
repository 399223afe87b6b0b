package services

// ServiceContainer holds instances of all the application services. It is the
// entry point handlers use to reach service functionality.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Ledger         LedgerSvcFacade
	Adjustment     AdjustmentSvc
	Reconciliation ReconciliationSvcFacade
	Staging        StagingSvcFacade
	Reporting      ReportingSvc
	Invoice        InvoiceSvcFacade
	User           UserSvcFacade
}
