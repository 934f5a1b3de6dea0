// Package facts turns hiera variables into a flat set of named facts.
//
// A Request names the hiera variables to resolve and, for each, the fact
// it should be published as. Only defined variables are published:
// an undefined variable leaves its fact unset.
//
//	req, err := facts.LoadRequest("hiera-facts.yaml")
//	if err != nil {
//	    return err
//	}
//	published, err := facts.Resolve(ctx, resolver, req.Keys)
//	doc := facts.Success(published)
//
// Fact names default to the hiera name with every ':' replaced by '_',
// so "profile::ntp::servers" becomes "profile__ntp__servers".
package facts
