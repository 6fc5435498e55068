package azdo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetWorkItem fetches a work item in its owning project, optionally expanded
// with its relations.
func (c *Client) GetWorkItem(ctx context.Context, project string, id int, expandRelations bool) (*WorkItem, error) {
	u := fmt.Sprintf("%s/wit/workitems/%d?api-version=%s", c.projectAPIs(project), id, apiVersion)
	if expandRelations {
		u = fmt.Sprintf("%s/wit/workitems/%d?$expand=relations&api-version=%s", c.projectAPIs(project), id, apiVersion)
	}

	var wi WorkItem
	if err := c.GetJSON(ctx, u, &wi); err != nil {
		return nil, err
	}
	return &wi, nil
}

// GetWorkItemFields fetches selected fields of a work item at organization
// scope, so the owning project does not need to be known up front.
func (c *Client) GetWorkItemFields(ctx context.Context, id int, fields ...string) (*WorkItem, error) {
	u := fmt.Sprintf("%s/wit/workitems/%d?fields=%s&api-version=%s",
		c.orgAPIs(), id, url.QueryEscape(strings.Join(fields, ",")), apiVersion)

	var wi WorkItem
	if err := c.GetJSON(ctx, u, &wi); err != nil {
		return nil, err
	}
	return &wi, nil
}
