// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

// Service endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	pubmedBase      = "https://pubmed.ncbi.nlm.nih.gov/"
	idconvBase      = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"
	oaBase          = "https://www.ncbi.nlm.nih.gov/pmc/utils/oa/oa.fcgi"
	elsevierBase    = "https://api.elsevier.com/content/article/doi/"
	springerBase    = "https://api.springernature.com/openaccess/jats"
	springerESMBase = "https://static-content.springer.com/esm/"
	wileyBase       = "https://api.wiley.com/onlinelibrary/tdm/v1/articles/"
	plosBase        = "http://journals.plos.org/plosone/article/file"
	doiResolverBase = "https://www.doi.org/"
	biorxivBase     = "https://api.biorxiv.org/details/biorxiv/"
	scienceOrigin   = "https://www.science.org"
)

// Credential names resolved through the secrets resolver.
const (
	ElsevierKey = "ELSEVIER_KEY"
	SpringerKey = "SPRINGER_KEY"
	WileyKey    = "WILEY_KEY"
)

// toolName identifies this client to the NCBI ID conversion service.
const toolName = "refminer"
