package catalogue

// Operation names of the query documents.
const (
	BooksOperation = "BooksQuery"
	WorkOperation  = "WorkQuery"
)

// worksQueryBody selects the work fields shown in the listing.
const worksQueryBody = `
            workId
            workType
            workStatus
            fullTitle
            title
            landingPage
            doi
            coverUrl
            license
            place
            publicationDate
            withdrawnDate
            updatedAt
            contributions {
                contributionId
                workId
                contributorId
                contributionType
                mainContribution
                createdAt
                updatedAt
                lastName
                fullName
                contributionOrdinal
                contributor {
                    contributorId
                    firstName
                    lastName
                    fullName
                    orcid
                    website
                    createdAt
                    updatedAt
                }
            }
            imprint {
                imprintId
                imprintName
                updatedAt
                publisher {
                    publisherId
                    publisherName
                    publisherShortname
                    publisherUrl
                    createdAt
                    updatedAt
                }
            }
        }`

const booksQueryHeader = `
    query BooksQuery($limit: Int, $offset: Int, $filter: String, $publishers: [Uuid!], $order: WorkOrderBy) {
        books(limit: $limit, offset: $offset, filter: $filter, publishers: $publishers, order: $order) {`

const booksQueryFooter = `
        bookCount(filter: $filter, publishers: $publishers)
    }
`

// BooksQuery lists one window of books together with the total count of the
// filtered set.
const BooksQuery = booksQueryHeader + worksQueryBody + booksQueryFooter

// WorkQuery fetches one work with every relation the detail view shows, the
// imprints it may be assigned to, and the work type and status catalogues.
const WorkQuery = `
    query WorkQuery($workId: Uuid!, $publishers: [Uuid!]) {
        work(workId: $workId) {
            workId
            workType
            workStatus
            fullTitle
            title
            subtitle
            reference
            edition
            doi
            publicationDate
            withdrawnDate
            place
            pageCount
            pageBreakdown
            imageCount
            tableCount
            audioCount
            videoCount
            license
            copyrightHolder
            landingPage
            lccn
            oclc
            shortAbstract
            longAbstract
            generalNote
            bibliographyNote
            toc
            coverUrl
            coverCaption
            updatedAt
            firstPage
            lastPage
            pageInterval
            contributions {
                contributionId
                workId
                contributorId
                contributionType
                mainContribution
                biography
                createdAt
                updatedAt
                firstName
                lastName
                fullName
                contributionOrdinal
                contributor {
                    contributorId
                    firstName
                    lastName
                    fullName
                    orcid
                    website
                    createdAt
                    updatedAt
                }
            }
            publications {
                publicationId
                publicationType
                workId
                isbn
                createdAt
                updatedAt
                widthMm
                widthIn
                heightMm
                heightIn
                depthMm
                depthIn
                weightG
                weightOz
            }
            languages {
                languageId
                workId
                languageCode
                languageRelation
                mainLanguage
                createdAt
                updatedAt
            }
            fundings {
                fundingId
                workId
                institutionId
                program
                projectName
                projectShortname
                grantNumber
                jurisdiction
                institution {
                    institutionId
                    institutionName
                    institutionDoi
                    ror
                    countryCode
                    createdAt
                    updatedAt
                }
            }
            subjects {
                subjectId
                workId
                subjectType
                subjectCode
                subjectOrdinal
                createdAt
                updatedAt
            }
            issues {
                issueId
                workId
                seriesId
                issueOrdinal
                series {
                    seriesId
                    seriesType
                    seriesName
                    issnPrint
                    issnDigital
                    seriesUrl
                }
            }
            imprint {
                imprintId
                imprintName
                imprintUrl
                crossmarkDoi
                updatedAt
                publisher {
                    publisherId
                    publisherName
                    publisherShortname
                    publisherUrl
                    createdAt
                    updatedAt
                }
            }
        }
        imprints(limit: 9999, publishers: $publishers) {
            imprintId
            imprintName
            imprintUrl
            crossmarkDoi
            updatedAt
            publisher {
                publisherId
                publisherName
                publisherShortname
                publisherUrl
                createdAt
                updatedAt
            }
        }
        workTypes: __type(name: "WorkType") {
            enumValues {
                name
            }
        }
        workStatuses: __type(name: "WorkStatus") {
            enumValues {
                name
            }
        }
    }
`
