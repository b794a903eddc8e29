package github

// GraphQL documents. The cards query pulls everything the digest needs in one
// round trip; the issue and pull request queries back the secondary lookups
// for links embedded in note text.

const cardsQuery = `
query($id: ID!) {
  node(id: $id) {
    ... on ProjectColumn {
      name
      cards(first: 50) {
        nodes {
          note
          state
          creator {
            login
          }
          content {
            ... on PullRequest {
              __typename
              title
              url
              author {
                login
              }
              assignees(first: 10) {
                nodes {
                  login
                }
              }
              reviewRequests(first: 10) {
                nodes {
                  requestedReviewer {
                    ... on User {
                      login
                    }
                  }
                }
              }
              latestOpinionatedReviews(last: 10) {
                nodes {
                  author {
                    login
                  }
                  state
                }
              }
              latestReviews(last: 100) {
                nodes {
                  author {
                    login
                  }
                  state
                }
              }
            }
            ... on Issue {
              __typename
              title
              url
              assignees(first: 10) {
                nodes {
                  login
                }
              }
            }
          }
        }
      }
    }
  }
}`

const issueQuery = `
query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      title
      url
      assignees(first: 10) {
        nodes {
          login
        }
      }
    }
  }
}`

const pullRequestQuery = `
query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      title
      url
      author {
        login
      }
      assignees(first: 10) {
        nodes {
          login
        }
      }
      reviewRequests(first: 10) {
        nodes {
          requestedReviewer {
            ... on User {
              login
            }
          }
        }
      }
      latestOpinionatedReviews(last: 10) {
        nodes {
          author {
            login
          }
          state
        }
      }
      latestReviews(last: 100) {
        nodes {
          author {
            login
          }
          state
        }
      }
    }
  }
}`

const membersQuery = `
query($org: String!) {
  organization(login: $org) {
    membersWithRole(first: 100) {
      nodes {
        login
      }
    }
  }
}`

const columnsQuery = `
query($org: String!, $number: Int!) {
  organization(login: $org) {
    project(number: $number) {
      id
      name
      columns(first: 20) {
        edges {
          node {
            id
            name
          }
        }
      }
    }
  }
}`
