package operation

import (
	"encoding/xml"
	"io"
)

// Response documents follow the protocol's envelope:
//
//	<DescribeInvoiceResponse xmlns="...">
//	  <DescribeInvoiceResult> ...output fields... </DescribeInvoiceResult>
//	  <ResponseMetadata><RequestId>...</RequestId></ResponseMetadata>
//	</DescribeInvoiceResponse>
//
// and failures:
//
//	<ErrorResponse>
//	  <Error><Type>Sender</Type><Code>...</Code><Message>...</Message></Error>
//	  <RequestId>...</RequestId>
//	</ErrorResponse>

type responseMetadata struct {
	RequestID string `xml:"RequestId"`
}

func encodeResult(w io.Writer, opName, xmlns, requestID string, output any) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: opName + "Response"}}
	if xmlns != "" {
		root.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: xmlns}}
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if err := enc.EncodeElement(output, xml.StartElement{Name: xml.Name{Local: opName + "Result"}}); err != nil {
		return err
	}
	meta := responseMetadata{RequestID: requestID}
	if err := enc.EncodeElement(meta, xml.StartElement{Name: xml.Name{Local: "ResponseMetadata"}}); err != nil {
		return err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

type errorResponse struct {
	XMLName   xml.Name    `xml:"ErrorResponse"`
	Error     errorDetail `xml:"Error"`
	RequestID string      `xml:"RequestId"`
}

type errorDetail struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

func encodeErrorResponse(w io.Writer, se *ServiceError, requestID string) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(errorResponse{
		Error: errorDetail{
			Type:    se.faultType(),
			Code:    se.Code,
			Message: se.Message,
		},
		RequestID: requestID,
	})
}
