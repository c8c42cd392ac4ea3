package model

// CallSite identifies which envelope a generator call and its normalization
// serve. One parameterized normalizer handles all three, so the per-site
// variants cannot drift apart.
type CallSite string

const (
	SiteStep   CallSite = "step"   // next-question envelope
	SitePlan   CallSite = "plan"   // full precomputed plan
	SiteResult CallSite = "result" // final report from accumulated scores
)
