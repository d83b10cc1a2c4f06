// Package dto contains request and response shapes that are specific to
// the HTTP layer: query filters, composite responses, and the parse and
// validate helpers every handler goes through.
//
// Request bodies mostly bind straight into domain input types, which carry
// their own validate tags:
//
//	var input domain.EventInput
//	if err := dto.ParseAndValidate(c, &input); err != nil {
//	    return handleServiceError(c, err)
//	}
package dto
